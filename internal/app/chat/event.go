/*
Package chat implements the realtime direct-messaging core: the online
presence hub, per-connection client sessions, the message send
pipeline, and the typing relay.

This file defines the wire protocol: every WebSocket frame is a JSON
envelope {type, payload} whose payload shape depends on the type.
*/
package chat

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the payload of a wire envelope.
type EventType string

const (
	// Client -> server
	EventUserOnline  EventType = "user_online"
	EventJoin        EventType = "join"
	EventSendMessage EventType = "send_message"
	EventTyping      EventType = "typing"
	EventStopTyping  EventType = "stop_typing"

	// Server -> client
	EventReceiveMessage    EventType = "receive_message"
	EventMessageAck        EventType = "message_ack"
	EventUserTyping        EventType = "user_typing"
	EventUserStoppedTyping EventType = "user_stopped_typing"
	EventUserStatusChanged EventType = "user_status_changed"
	EventError             EventType = "error"
)

// Envelope is the outer frame for every WebSocket message.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload and wraps it in an Envelope, returning the
// full frame bytes ready to queue on a client's send channel.
func NewEvent(eventType EventType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return json.Marshal(Envelope{
		Type:    eventType,
		Payload: payloadBytes,
	})
}

// UserOnlinePayload announces the connection's user identity.
type UserOnlinePayload struct {
	UserID int64 `json:"user_id"`
}

// JoinPayload subscribes the session to the conversation between two
// users. User1 is the joining user and doubles as an implicit online
// announcement.
type JoinPayload struct {
	User1 int64 `json:"user1"`
	User2 int64 `json:"user2"`
}

// SendMessagePayload is a client's request to deliver a direct message.
// ClientMessageID is an opaque correlation token echoed back unchanged
// so the sender's UI can reconcile its optimistic rendering; it is
// never persisted.
type SendMessagePayload struct {
	SenderID        int64  `json:"sender_id"`
	ReceiverID      int64  `json:"receiver_id"`
	Message         string `json:"message"`
	ClientMessageID string `json:"client_message_id,omitempty"`
}

// ReceiveMessagePayload is the enriched message broadcast to every
// session subscribed to the conversation. Content and Message carry the
// same text; the duplicated field is kept for client compatibility.
type ReceiveMessagePayload struct {
	SenderID        int64  `json:"sender_id"`
	ReceiverID      int64  `json:"receiver_id"`
	Content         string `json:"content"`
	Message         string `json:"message"`
	ClientMessageID string `json:"client_message_id,omitempty"`
	SenderUsername  string `json:"sender_username"`
	SenderPfp       string `json:"sender_pfp"`
	MessageID       int64  `json:"message_id"`
	CreatedAt       string `json:"created_at"`
}

// Ack statuses returned to the caller of a send.
const (
	AckStatusOK    = "ok"
	AckStatusError = "error"
)

// AckPayload is the synchronous response to a send_message event,
// distinct from the receive_message broadcast. MessageID is only set
// when Status is "ok".
type AckPayload struct {
	Status          string `json:"status"`
	MessageID       int64  `json:"message_id,omitempty"`
	ClientMessageID string `json:"client_message_id,omitempty"`
	Code            int    `json:"code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// TypingPayload is the client's transient typing / stop-typing signal.
type TypingPayload struct {
	UserID     int64 `json:"user_id"`
	ReceiverID int64 `json:"receiver_id"`
}

// UserTypingPayload is the relayed signal seen by the other party.
type UserTypingPayload struct {
	UserID int64 `json:"user_id"`
}

// StatusChangedPayload is broadcast to every connected session on each
// presence transition.
type StatusChangedPayload struct {
	UserID   int64 `json:"user_id"`
	IsOnline bool  `json:"is_online"`
}

// ErrorPayload reports a per-event validation problem back to the
// offending session without disturbing the connection.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
