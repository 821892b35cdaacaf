/*
Package chat implements the realtime direct-messaging core.

This file defines the Gateway, which orchestrates a message send:
validate, derive the room, persist, enrich with sender display data,
broadcast to the room, and acknowledge the caller. It also relays
typing signals between conversation participants.
*/
package chat

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Woeter69/algo/internal/app/db"
	"github.com/Woeter69/algo/internal/app/store"
	"github.com/Woeter69/algo/internal/pkg/errs"
	"github.com/Woeter69/algo/internal/pkg/logx"
	"github.com/Woeter69/algo/internal/pkg/randx"
)

const (
	// MaxContentBytes caps direct message content length.
	MaxContentBytes = 5000

	// persistTimeout bounds the database insert; a send that cannot be
	// made durable within it gets a failure ack instead of hanging.
	persistTimeout = 5 * time.Second

	// enrichTimeout bounds the best-effort profile lookup.
	enrichTimeout = 2 * time.Second

	// avatarURLDuration is the lifetime of presigned avatar URLs
	// embedded in broadcast messages.
	avatarURLDuration = 15 * time.Minute
)

// MessageStore is the persistence collaborator for the send pipeline.
type MessageStore interface {
	InsertMessage(ctx context.Context, senderID, receiverID int64, content string) (store.Message, error)
	GetProfile(ctx context.Context, userID int64) (store.Profile, error)
}

// AvatarResolver turns stored avatar object keys into fetchable URLs.
type AvatarResolver interface {
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// Gateway runs the send pipeline against the hub, the message store,
// and the (optional) avatar storage collaborator.
type Gateway struct {
	hub     *Hub
	store   MessageStore
	avatars AvatarResolver

	logger zerolog.Logger
}

// NewGateway wires a Gateway. avatars may be nil, in which case
// enriched messages carry the raw stored avatar reference.
func NewGateway(hub *Hub, messageStore MessageStore, avatars AvatarResolver) *Gateway {
	return &Gateway{
		hub:     hub,
		store:   messageStore,
		avatars: avatars,
		logger:  logx.Logger().With().Str("component", "Gateway").Logger(),
	}
}

// Send validates and delivers one direct message, returning the ack for
// the original caller.
//
// The message is broadcast only after it is durably persisted; a failed
// or timed-out insert yields a failure ack and no broadcast. There is no
// server-side dedup: a retry after a lost ack stores a second row, and
// ClientMessageID exists only so the sending client can reconcile its
// own optimistic UI.
func (g *Gateway) Send(payload SendMessagePayload) AckPayload {
	content := strings.TrimSpace(payload.Message)

	if payload.SenderID == 0 || payload.ReceiverID == 0 {
		return errorAck(payload.ClientMessageID, errs.NewError(errs.ErrMissingParticipant))
	}

	if content == "" {
		return errorAck(payload.ClientMessageID, errs.NewError(errs.ErrEmptyMessageContent))
	}

	if len(content) > MaxContentBytes {
		return errorAck(payload.ClientMessageID, errs.NewError(errs.ErrMessageContentTooLong))
	}

	room := RoomKey(payload.SenderID, payload.ReceiverID)

	// Persist first, holding no hub lock. Once committed the message
	// stays written even if the sender disconnects before the ack.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	msg, err := g.store.InsertMessage(ctx, payload.SenderID, payload.ReceiverID, content)
	if err != nil {
		g.logger.Error().Err(err).
			Int64("sender_id", payload.SenderID).
			Int64("receiver_id", payload.ReceiverID).
			Msg("Message insert failed; nothing broadcast.")
		return errorAck(payload.ClientMessageID, errs.NewError(errs.ErrMessageNotSaved))
	}

	username, avatarURL := g.senderDisplay(payload.SenderID)

	broadcast := ReceiveMessagePayload{
		SenderID:        msg.SenderID,
		ReceiverID:      msg.ReceiverID,
		Content:         msg.Content,
		Message:         msg.Content,
		ClientMessageID: payload.ClientMessageID,
		SenderUsername:  username,
		SenderPfp:       avatarURL,
		MessageID:       msg.MessageID,
		CreatedAt:       msg.CreatedAt.UTC().Format(time.RFC3339),
	}

	data, err := NewEvent(EventReceiveMessage, broadcast)
	if err != nil {
		// The message is already durable; the sender still gets a
		// success ack and can refetch history.
		g.logger.Error().Err(err).Int64("message_id", msg.MessageID).Msg("Failed to encode broadcast event.")
		return AckPayload{
			Status:          AckStatusOK,
			MessageID:       msg.MessageID,
			ClientMessageID: payload.ClientMessageID,
		}
	}

	g.hub.BroadcastToRoom(room, data, nil)

	return AckPayload{
		Status:          AckStatusOK,
		MessageID:       msg.MessageID,
		ClientMessageID: payload.ClientMessageID,
	}
}

// RelayTyping fans a typing or stop-typing signal out to the other
// sessions in the conversation, never back to the sender. Delivery is
// best-effort and any failure is contained here.
func (g *Gateway) RelayTyping(sender *Client, payload TypingPayload, start bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn().Interface("panic", r).Msg("Recovered from panic in typing relay.")
		}
	}()

	eventType := EventUserTyping
	if !start {
		eventType = EventUserStoppedTyping
	}

	data, err := NewEvent(eventType, UserTypingPayload{UserID: payload.UserID})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to encode typing event.")
		return
	}

	room := RoomKey(payload.UserID, payload.ReceiverID)
	g.hub.BroadcastToRoom(room, data, sender)
}

// senderDisplay fetches the sender's current display name and avatar.
// Any failure degrades to a placeholder identity; enrichment is never a
// reason to fail a send.
func (g *Gateway) senderDisplay(senderID int64) (username, avatarURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()

	profile, err := g.store.GetProfile(ctx, senderID)
	if err != nil {
		if !db.IsNotFound(err) {
			g.logger.Warn().Err(err).Int64("sender_id", senderID).Msg("Profile lookup failed; using placeholder identity.")
		}
		return placeholderName(senderID), ""
	}

	username = profile.Username
	if username == "" {
		username = placeholderName(senderID)
	}

	avatarURL = profile.PfpPath
	if g.avatars != nil && randx.IsStorageKey(profile.PfpPath) {
		if url, err := g.avatars.PresignDownload(ctx, profile.PfpPath, avatarURLDuration); err == nil {
			avatarURL = url
		}
	}

	return username, avatarURL
}

// placeholderName matches the fallback the web client renders when no
// profile is available.
func placeholderName(userID int64) string {
	return "User " + strconv.FormatInt(userID, 10)
}

// errorAck builds a failure acknowledgment carrying the business error
// code and the caller's correlation token.
func errorAck(clientMessageID string, customErr *errs.CustomError) AckPayload {
	return AckPayload{
		Status:          AckStatusError,
		ClientMessageID: clientMessageID,
		Code:            customErr.Code,
		Error:           customErr.Message,
	}
}
