/*
Package chat implements the realtime direct-messaging core.

This file defines the Hub: the process-wide presence registry mapping
user IDs to their live connection, plus the per-room subscriber sets
used for broadcast fan-out. All maps are guarded by a single RWMutex;
nothing outside this file mutates them.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Woeter69/algo/internal/pkg/logx"
)

// Hub owns the online-user registry and room subscriptions.
//
// Presence follows last-writer-wins: a second announcement for the same
// user replaces the registry entry without closing the older transport.
// The stale connection keeps running until its own ping timeout kills
// it, at which point its cleanup is a no-op because the registry no
// longer points at it.
type Hub struct {
	// clients maps a user ID to that user's current connection.
	clients map[int64]*Client

	// rooms maps a room key to the set of subscribed sessions.
	rooms map[string]map[*Client]struct{}

	// mu guards clients, rooms, and every Client.rooms set.
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub returns an empty Hub ready for connections.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
		logger:  logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Announce records client as the live connection for its user and
// broadcasts the online transition to every connected session. It
// cannot fail; a duplicate announcement for the same user silently
// replaces the previous entry.
func (h *Hub) Announce(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()

	if existing, ok := h.clients[userID]; ok && existing != client {
		h.logger.Warn().
			Int64("user_id", userID).
			Str("old_session", existing.SessionID()).
			Str("new_session", client.SessionID()).
			Msg("Duplicate online announcement. Replacing presence entry (old transport left open).")
	}

	h.clients[userID] = client

	h.broadcastStatusLocked(userID, true)

	h.logger.Info().
		Int64("user_id", userID).
		Int("online_count", len(h.clients)).
		Msg("User announced online.")
}

// Remove cleans up after a disconnecting client: it drops all of the
// session's room subscriptions and, if the registry still points at
// this exact connection, removes the presence entry and broadcasts the
// offline transition. A connection that never announced produces no
// broadcast, and a replaced (stale) connection leaves the newer entry
// untouched.
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range client.rooms {
		if subscribers, ok := h.rooms[room]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.rooms = make(map[string]struct{})

	userID := client.UserID()
	if userID == 0 {
		return
	}

	current, ok := h.clients[userID]
	if !ok || current != client {
		h.logger.Info().
			Int64("user_id", userID).
			Str("session_id", client.SessionID()).
			Msg("Ignoring removal for stale or unknown connection.")
		return
	}

	delete(h.clients, userID)

	h.broadcastStatusLocked(userID, false)

	h.logger.Info().
		Int64("user_id", userID).
		Int("online_count", len(h.clients)).
		Msg("User went offline.")
}

// Join subscribes client to the given room. Membership lasts for the
// connection's lifetime; there is no explicit leave.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}

	h.rooms[room][client] = struct{}{}
	client.rooms[room] = struct{}{}

	h.logger.Info().
		Str("room", room).
		Int64("user_id", client.UserID()).
		Int("subscribers", len(h.rooms[room])).
		Msg("Session joined room.")
}

// BroadcastToRoom queues data on every session subscribed to room,
// skipping except when non-nil. Delivery is best-effort per subscriber:
// a session with a full send queue just misses the frame rather than
// stalling the room.
func (h *Hub) BroadcastToRoom(room string, data []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		if client == except {
			continue
		}
		if err := client.enqueue(data); err != nil {
			h.logger.Warn().
				Str("room", room).
				Int64("user_id", client.UserID()).
				Msg("Subscriber send queue full, frame dropped.")
		}
	}
}

// Snapshot returns the IDs of every currently-online user, for the
// polling HTTP endpoint.
func (h *Hub) Snapshot() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	online := make([]int64, 0, len(h.clients))
	for userID := range h.clients {
		online = append(online, userID)
	}
	return online
}

// Shutdown closes every connected session's send channel so their
// write pumps terminate with a close frame.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[*Client]struct{})

	for _, client := range h.clients {
		seen[client] = struct{}{}
	}
	for _, subscribers := range h.rooms {
		for client := range subscribers {
			seen[client] = struct{}{}
		}
	}

	for client := range seen {
		client.closeSend()
	}

	h.clients = make(map[int64]*Client)
	h.rooms = make(map[string]map[*Client]struct{})

	h.logger.Info().Int("sessions_closed", len(seen)).Msg("Hub shutdown complete.")
}

// broadcastStatusLocked emits a user_status_changed event to every
// connected session. Callers must hold mu; keeping emission under the
// lock preserves the order of presence transitions.
func (h *Hub) broadcastStatusLocked(userID int64, isOnline bool) {
	data, err := NewEvent(EventUserStatusChanged, StatusChangedPayload{
		UserID:   userID,
		IsOnline: isOnline,
	})
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to build status event.")
		return
	}

	for _, client := range h.clients {
		if err := client.enqueue(data); err != nil {
			h.logger.Warn().
				Int64("user_id", client.UserID()).
				Msg("Send queue full during status broadcast, frame dropped.")
		}
	}
}
