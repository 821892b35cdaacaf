/*
Package handler provides the HTTP handlers and routing setup for the
realtime server.

This file serves the synchronous chat surfaces: the online-status
snapshot polled by the web client and conversation history.
*/
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Woeter69/algo/internal/pkg/auth/jwt"
	"github.com/Woeter69/algo/internal/pkg/errs"
	"github.com/Woeter69/algo/internal/pkg/logx"
	"github.com/Woeter69/algo/internal/pkg/resp"
)

// HistoryDefaultLimit bounds a history page when the client does not
// ask for a specific size.
const HistoryDefaultLimit = 50

// HandleOnlineStatus answers with the current presence snapshot. The
// flat {"online_users": [...]} shape is a compatibility contract with
// the polling client and bypasses the JSON envelope on purpose.
func HandleOnlineStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		online := deps.Hub.Snapshot()

		resp.RespondJSON(w, r, http.StatusOK, map[string]any{
			"online_users": online,
		})
	}
}

// HandleConversationHistory returns the messages exchanged between the
// authenticated caller and the user named in the path, oldest first.
func HandleConversationHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		otherID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil || otherID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		limit := HistoryDefaultLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 || parsed > 500 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			limit = parsed
		}

		messages, listErr := deps.Store.ListConversation(r.Context(), identity.UserID, otherID, limit)
		if listErr != nil {
			logx.Error(listErr, "Failed to list conversation",
				"user_id", identity.UserID,
				"other_id", otherID,
			)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}
