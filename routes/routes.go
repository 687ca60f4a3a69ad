package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	_ "github.com/Dosada05/scoreboard/docs" // регистрирует OpenAPI документ
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/middleware"
	"github.com/Dosada05/scoreboard/realtime"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Team         *handlers.TeamHandler
	Round        *handlers.RoundHandler
	Notification *handlers.NotificationHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	CORSOrigins []string
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	// Hub, when set, adds the connected WebSocket client count to /healthz.
	Hub *realtime.Hub
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler(opts.Hub))
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws", h.WebSocket.ServeWs)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.ListTeams)
			r.Post("/", h.Team.CreateTeam)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.Team.GetTeamByID)
				r.Delete("/", h.Team.DeleteTeam)
				r.Put("/kills", h.Team.UpdateKills)
				r.Post("/kills/increment", h.Team.IncrementKills)
				r.Post("/kills/decrement", h.Team.DecrementKills)
				r.Put("/elimination", h.Team.TogglePlayerElimination)
			})
		})

		r.Route("/rounds", func(r chi.Router) {
			r.Post("/", h.Round.CreateRound)
			r.Delete("/{roundNumber}", h.Round.DeleteRound)
			r.Put("/{roundNumber}/positions", h.Round.SetPositions)
		})

		elimination := eliminationRoutes(h.Notification)
		r.Mount("/elimination", elimination)
		// Старый путь оверлея
		r.Mount("/elimination-notification", elimination)
	})
}

func healthHandler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if hub != nil {
			body["websocket_clients"] = hub.ClientCount()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func eliminationRoutes(h *handlers.NotificationHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/track", h.Track)
	r.Post("/display", h.MarkDisplayed)
	r.Get("/check/{teamID}/{roundNumber}", h.CheckDisplayStatus)
	r.Post("/sync", h.Sync)
	r.Get("/pending", h.Pending)
	r.Get("/all", h.All)
	r.Patch("/{notificationID}/displayed", h.MarkDisplayedByID)
	r.Patch("/round/{roundNumber}/reset", h.ResetRound)
	r.Delete("/reset", h.ResetAll)
	return r
}
