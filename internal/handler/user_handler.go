/*
Package handler provides the HTTP handlers and routing setup for the
realtime server.

This file serves user profile reads and avatar uploads.
*/
package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Woeter69/algo/internal/app/db"
	"github.com/Woeter69/algo/internal/pkg/auth/jwt"
	"github.com/Woeter69/algo/internal/pkg/errs"
	"github.com/Woeter69/algo/internal/pkg/logx"
	"github.com/Woeter69/algo/internal/pkg/randx"
	"github.com/Woeter69/algo/internal/pkg/req"
	"github.com/Woeter69/algo/internal/pkg/resp"
)

const (
	// avatarFormField is the multipart field the web client uploads
	// avatars under.
	avatarFormField = "avatar"

	// maxUsernameLen caps profile display handles.
	maxUsernameLen = 50

	// profileAvatarURLDuration is the lifetime of presigned avatar URLs
	// returned by the profile and upload endpoints.
	profileAvatarURLDuration = 15 * time.Minute

	// sniffLen is the number of leading bytes used for content type
	// detection, per http.DetectContentType.
	sniffLen = 512
)

// HandleGetProfile returns a user's display name and avatar. Stored
// object keys are resolved to short-lived download URLs when storage is
// configured.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil || userID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		profile, err := deps.Store.GetProfile(r.Context(), userID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}

			logx.Error(err, "Failed to fetch profile", "user_id", userID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		avatarURL := profile.PfpPath
		if deps.Storage != nil && randx.IsStorageKey(profile.PfpPath) {
			if url, presignErr := deps.Storage.PresignDownload(r.Context(), profile.PfpPath, profileAvatarURLDuration); presignErr == nil {
				avatarURL = url
			}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user_id":  profile.UserID,
			"username": profile.Username,
			"pfp_url":  avatarURL,
		})
	}
}

// updateProfileRequest is the JSON body for a profile update.
type updateProfileRequest struct {
	Username string `json:"username"`
}

// HandleUpdateProfile changes the authenticated user's display handle.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var body updateProfileRequest
		if customErr := req.BindJSON(r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := strings.TrimSpace(body.Username)
		if username == "" || len(username) > maxUsernameLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Store.UpdateUsername(r.Context(), identity.UserID, username); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}

			logx.Error(err, "Failed to update username", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"username": username,
		})
	}
}

// HandleUploadAvatar stores a new avatar for the authenticated user and
// returns a download URL for it. The replaced object is deleted in the
// background once the new reference is committed.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Storage == nil {
			logx.Warn("Avatar upload rejected: No object storage configured.")
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile(avatarFormField)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		head := make([]byte, sniffLen)
		n, readErr := io.ReadFull(file, head)
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		head = head[:n]

		mimeType := http.DetectContentType(head)
		if !strings.HasPrefix(mimeType, "image/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatarFile, req.MaxRequestFileSize>>20))
			return
		}

		key := randx.AvatarKey(identity.UserID, header.Filename)
		body := io.MultiReader(bytes.NewReader(head), file)

		if err := deps.Storage.Upload(r.Context(), key, mimeType, body); err != nil {
			logx.Error(err, "Avatar upload to object storage failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		previous, err := deps.Store.UpdateAvatar(r.Context(), identity.UserID, key)
		if err != nil {
			logx.Error(err, "Failed to store new avatar reference", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if randx.IsAvatarKey(previous, identity.UserID) && previous != key {
			go func(oldKey string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := deps.Storage.Delete(ctx, oldKey); err != nil {
					logx.Warn("Failed to delete replaced avatar object.", "key", oldKey)
				}
			}(previous)
		}

		avatarURL := key
		if url, presignErr := deps.Storage.PresignDownload(r.Context(), key, profileAvatarURLDuration); presignErr == nil {
			avatarURL = url
		}

		resp.RespondSuccess(w, r, map[string]any{
			"pfp_url": avatarURL,
		})
	}
}
