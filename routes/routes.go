package routes

import (
	"github.com/courtflow/venue-platform/handlers"
	"github.com/courtflow/venue-platform/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает маршруты скорингового ядра. Чтение игры и подписка
// на её канал публичны, все мутации — за аутентификацией.
func SetupRoutes(
	router *chi.Mux,
	gameHandler *handlers.GameHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret []byte,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/games", func(r chi.Router) {
		r.Get("/{gameID}", gameHandler.GetGame)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(jwtSecret))

			r.Post("/", gameHandler.CreateGame)
			r.Post("/{gameID}/teams/{teamID}/players/{playerID}/actions", gameHandler.ApplyAction)
			r.Post("/{gameID}/teams/{teamID}/players/{playerID}", gameHandler.SubstitutePlayerIn)
			r.Delete("/{gameID}/teams/{teamID}/players/{playerID}", gameHandler.SubstitutePlayerOut)
			r.Post("/{gameID}/teams/{teamID}/timeout", gameHandler.Timeout)
			r.Post("/{gameID}/undo", gameHandler.Undo)
			r.Post("/{gameID}/timer", gameHandler.Timer)
			r.Post("/{gameID}/overtime", gameHandler.StartOvertime)
			r.Post("/{gameID}/finish", gameHandler.FinishGame)
		})
	})

	router.Get("/ws/games/{gameID}", webSocketHandler.ServeWs)
}
