/*
Package handler provides the HTTP handlers and routing setup for the
realtime server.

This file builds the chi router: CORS, request logging, recovery,
identity extraction, per-IP rate limits, the REST endpoints consumed by
the web client, and the WebSocket upgrade route.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/Woeter69/algo/internal/pkg/auth/jwt"
	"github.com/Woeter69/algo/internal/pkg/limiter"
	"github.com/Woeter69/algo/internal/pkg/logx"
	"github.com/Woeter69/algo/internal/pkg/resp"
)

const (
	// ConnectRate limits WebSocket handshakes per IP.
	ConnectRate  = 0.2
	ConnectBurst = 5

	// UploadRate limits avatar uploads per IP.
	UploadRate  = 0.05
	UploadBurst = 2
)

// Router assembles the full HTTP routing table.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	uploadLimiter := limiter.NewIPRateLimiter(rate.Limit(UploadRate), UploadBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "algo realtime server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		// Polled by the web client; response shape predates the JSON
		// envelope and must stay flat.
		api.Get("/online_status", HandleOnlineStatus(deps))

		api.Route("/chat", func(chatRoutes chi.Router) {
			chatRoutes.Get("/history/{userID}", HandleConversationHistory(deps))
		})

		api.Route("/user", func(userRoutes chi.Router) {
			userRoutes.Get("/profile/{userID}", HandleGetProfile(deps))
			userRoutes.Post("/profile", HandleUpdateProfile(deps))

			rateLimitedUpload := uploadLimiter.Middleware(HandleUploadAvatar(deps))
			userRoutes.Post("/avatar", http.HandlerFunc(rateLimitedUpload.ServeHTTP))
		})
	})

	r.Group(func(ws chi.Router) {
		ws.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))
		ws.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))
	})

	return r
}
