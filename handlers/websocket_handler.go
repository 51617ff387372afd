package handlers

import (
	"log/slog"
	"net/http"

	"github.com/courtflow/venue-platform/live"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Подписка на канал игры публичная, Origin не проверяется.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs подписывает клиента на канал игры: GET /ws/games/{gameID}.
// Подписчик получает полный агрегат после каждой зафиксированной мутации;
// текущее состояние на момент подключения он перечитывает через REST.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		h.logger.Error("websocket upgrade failed",
			slog.Int("game_id", gameID), slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, gameID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
