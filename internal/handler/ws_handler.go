/*
Package handler provides the HTTP handlers and routing setup for the
realtime server.

This file upgrades authenticated requests to WebSocket sessions and
starts their pumps.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Woeter69/algo/internal/app/chat"
	"github.com/Woeter69/algo/internal/pkg/auth/jwt"
	"github.com/Woeter69/algo/internal/pkg/errs"
	"github.com/Woeter69/algo/internal/pkg/limiter"
	"github.com/Woeter69/algo/internal/pkg/logx"
	"github.com/Woeter69/algo/internal/pkg/resp"
)

// HandleWebSocket returns the handler for the /ws endpoint. The caller
// must present a valid identity token (header or "token" query param);
// the session's user identity comes from the token, never from the
// client's later events.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			logx.Warn("WebSocket connection rejected: Missing or invalid identity token.")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, deps.Gateway, conn, identity.UserID, identity.Username)

		go client.WritePump()

		logx.Info("WebSocket connection established",
			"user_id", identity.UserID,
			"session_id", client.SessionID(),
		)

		client.ReadPump()
	}
}
