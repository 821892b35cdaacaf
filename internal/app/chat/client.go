/*
Package chat implements the realtime direct-messaging core.

This file defines the Client struct, one per live WebSocket connection.
It runs the read/write pumps, tracks the session's lifecycle (connected,
identified, in-room, disconnected), and dispatches inbound events to the
Hub and the messaging Gateway.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Woeter69/algo/internal/pkg/errs"
	"github.com/Woeter69/algo/internal/pkg/logx"
)

const (
	// writeWait bounds a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for a Pong before
	// declaring the connection dead.
	pongWait = 60 * time.Second

	// pingPeriod is the heartbeat interval; must be below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps an inbound frame in bytes.
	maxMessageSize = 8192

	// sendQueueSize is the per-session outbound buffer. Broadcasts to a
	// session with a full queue are dropped, never blocked on.
	sendQueueSize = 256
)

// Client represents one live WebSocket session and its authenticated
// user identity.
type Client struct {
	// sessionID uniquely names this connection, independent of user.
	sessionID string

	hub     *Hub
	gateway *Gateway

	// conn is the underlying WebSocket transport.
	conn *websocket.Conn

	// userID/username come from the handshake identity token. The user
	// does not appear in the presence registry until it announces.
	userID   int64
	username string

	// announced flips once the session has declared itself online,
	// explicitly or via join. Only the read pump touches it.
	announced bool

	// rooms is the session's subscription set; guarded by hub.mu and
	// cleared atomically with the presence entry on disconnect.
	rooms map[string]struct{}

	// send queues outbound frames for the write pump. sendMu and
	// sendClosed make closing the queue safe against a read pump that
	// is still dispatching a late inbound event.
	send       chan []byte
	sendMu     sync.Mutex
	sendClosed bool

	logger zerolog.Logger
}

// NewClient builds a session for an upgraded connection. The pumps are
// started by the caller.
func NewClient(hub *Hub, gateway *Gateway, conn *websocket.Conn, userID int64, username string) *Client {
	sessionID := uuid.New().String()

	clientLogger := logx.Logger().With().
		Str("session_id", sessionID).
		Int64("user_id", userID).
		Logger()

	return &Client{
		sessionID: sessionID,
		hub:       hub,
		gateway:   gateway,
		conn:      conn,
		userID:    userID,
		username:  username,
		rooms:     make(map[string]struct{}),
		send:      make(chan []byte, sendQueueSize),
		logger:    clientLogger,
	}
}

// UserID returns the authenticated user identity for this session.
func (c *Client) UserID() int64 {
	return c.userID
}

// SessionID returns the connection's unique identifier.
func (c *Client) SessionID() string {
	return c.sessionID
}

// ReadPump reads frames until the transport closes, dispatching each
// event. It always runs the disconnect cleanup on exit, regardless of
// how far the session got through its lifecycle.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.handleEvent(messageBytes)
	}
}

// cleanupOnDisconnect removes the session from the hub and closes the
// transport.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Session cleanup starting.")

	c.hub.Remove(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during cleanup")
	}
}

// handleEvent parses one inbound envelope and dispatches it. Malformed
// or out-of-state events produce an error frame for this session only;
// they never terminate the connection.
func (c *Client) handleEvent(messageBytes []byte) {
	var envelope Envelope
	if err := json.Unmarshal(messageBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Session sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch envelope.Type {
	case EventUserOnline:
		c.handleUserOnline(envelope.Payload)

	case EventJoin:
		c.handleJoin(envelope.Payload)

	case EventSendMessage:
		c.handleSendMessage(envelope.Payload)

	case EventTyping:
		c.handleTyping(envelope.Payload, true)

	case EventStopTyping:
		c.handleTyping(envelope.Payload, false)

	default:
		c.logger.Warn().Str("event_type", string(envelope.Type)).Msg("Session sent unsupported event type")
	}
}

// handleUserOnline processes an explicit presence announcement.
func (c *Client) handleUserOnline(payloadBytes json.RawMessage) {
	var payload UserOnlinePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if payload.UserID != c.userID {
		c.SendError(errs.NewError(errs.ErrSenderMismatch))
		return
	}

	c.announced = true
	c.hub.Announce(c)
}

// handleJoin subscribes the session to a two-party conversation. The
// joining user is implicitly announced online if it has not been yet.
func (c *Client) handleJoin(payloadBytes json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if payload.User1 == 0 || payload.User2 == 0 {
		c.SendError(errs.NewError(errs.ErrMissingParticipant))
		return
	}

	if payload.User1 != c.userID {
		c.SendError(errs.NewError(errs.ErrSenderMismatch))
		return
	}

	if !c.announced {
		c.announced = true
		c.hub.Announce(c)
	}

	c.hub.Join(c, RoomKey(payload.User1, payload.User2))
}

// handleSendMessage runs the send pipeline and always answers the
// caller with a message_ack frame, success or failure.
func (c *Client) handleSendMessage(payloadBytes json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if !c.announced {
		c.sendAck(errorAck(payload.ClientMessageID, errs.NewError(errs.ErrNotIdentified)))
		return
	}

	if payload.SenderID != c.userID {
		c.sendAck(errorAck(payload.ClientMessageID, errs.NewError(errs.ErrSenderMismatch)))
		return
	}

	c.sendAck(c.gateway.Send(payload))
}

// handleTyping validates and relays a typing or stop-typing signal.
func (c *Client) handleTyping(payloadBytes json.RawMessage, start bool) {
	var payload TypingPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if payload.UserID == 0 || payload.ReceiverID == 0 {
		c.SendError(errs.NewError(errs.ErrMissingParticipant))
		return
	}

	if !c.announced || payload.UserID != c.userID {
		c.SendError(errs.NewError(errs.ErrSenderMismatch))
		return
	}

	c.gateway.RelayTyping(c, payload, start)
}

// sendAck queues a message_ack frame for this session.
func (c *Client) sendAck(ack AckPayload) {
	c.sendEvent(EventMessageAck, ack)
}

// SendError queues an error frame describing a rejected event.
func (c *Client) SendError(customErr *errs.CustomError) {
	c.sendEvent(EventError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

// sendEvent builds an envelope and queues it on the send channel.
func (c *Client) sendEvent(eventType EventType, payload any) {
	data, err := NewEvent(eventType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to build event")
		return
	}

	if err := c.enqueue(data); err != nil {
		c.logger.Warn().Str("event_type", string(eventType)).Msg("Failed to queue event")
	}
}

// enqueue performs a non-blocking send to the session's outbound queue.
// A closed queue reports an error instead of panicking, so events that
// arrive during shutdown are dropped harmlessly.
func (c *Client) enqueue(data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return fmt.Errorf("session send queue closed")
	}

	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("session send queue full")
	}
}

// closeSend closes the outbound queue, which makes the write pump send
// a close frame and exit. Idempotent; only the hub calls this, under
// its lock.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return
	}

	c.sendClosed = true
	close(c.send)
}

// WritePump drains the send queue onto the wire and keeps the heartbeat
// going. It owns all writes to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame, or the close frame when the
// queue has been shut. Returns false when the pump should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends the heartbeat ping. Returns false when the
// pump should stop.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		return false
	}

	return true
}
