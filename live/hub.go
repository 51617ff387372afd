// Package live — pub/sub рассылка состояния живых игр по WebSocket.
// Комната на игру; после каждой зафиксированной мутации агрегат целиком
// уходит всем подписчикам комнаты. Доставка best-effort и at-most-once:
// отвалившийся клиент пропускает промежуточные состояния и перечитывает
// текущее по переподключении.
package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// GameEvent — кадр, уходящий подписчикам комнаты игры.
type GameEvent struct {
	Type    string      `json:"type"`
	GameID  int         `json:"game_id"`
	Payload interface{} `json:"payload"`
}

// EventGameUpdated — единственный тип кадра: полное состояние игры после
// мутации.
const EventGameUpdated = "GAME_UPDATED"

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string

	mu     sync.Mutex
	closed bool
}

// Hub держит комнаты подписчиков. Регистрация и отписка идут через каналы
// в одной горутине Run, рассылка — под RLock по снимку комнаты.
type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// NewClient навешивает клиента hub-а на установленное WebSocket-соединение
// и подписывает его на комнату игры. Вызывающий запускает пампы.
func (h *Hub) NewClient(conn *websocket.Conn, gameID int) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		room: gameRoom(gameID),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("client registered",
				slog.String("room", client.room),
				slog.Int("room_size", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, inRoom := clients[client]; inRoom {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastGame публикует состояние игры в её комнату. Не блокируется:
// переполненный канал клиента означает пропущенный кадр, не задержку
// мутации. Кадры одного клиента сохраняют порядок мутаций.
func (h *Hub) BroadcastGame(gameID int, payload interface{}) {
	message, err := json.Marshal(GameEvent{
		Type:    EventGameUpdated,
		GameID:  gameID,
		Payload: payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal game event",
			slog.Int("game_id", gameID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[gameRoom(gameID)] {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- message:
		default:
			// Медленный подписчик: кадр теряется, комната не ждёт.
		}
		client.mu.Unlock()
	}
}

func gameRoom(gameID int) string {
	return "game_" + strconv.Itoa(gameID)
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// ReadPump вычитывает входящие кадры до разрыва. Клиентские сообщения
// игнорируются: канал односторонний, мутации идут только через HTTP API.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("client read error",
					slog.String("room", c.room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Register подписывает клиента; Unregister снимает подписку и закрывает
// его канал отправки.
func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }
