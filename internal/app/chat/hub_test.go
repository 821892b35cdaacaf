package chat

import (
	"encoding/json"
	"testing"
)

// newTestClient builds a session without a transport. The pumps are
// never started in these tests; everything observable arrives on the
// send channel.
func newTestClient(hub *Hub, userID int64) *Client {
	return NewClient(hub, nil, nil, userID, "")
}

// mustEvent pops the next queued frame from the client and decodes the
// envelope. Fails the test when the queue is empty.
func mustEvent(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case data := <-c.send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("queued frame is not a valid envelope: %v", err)
		}
		return env
	default:
		t.Fatal("expected a queued event, send channel is empty")
		return Envelope{}
	}
}

// mustStatusEvent asserts the next frame is a user_status_changed event
// and returns its payload.
func mustStatusEvent(t *testing.T, c *Client) StatusChangedPayload {
	t.Helper()

	env := mustEvent(t, c)
	if env.Type != EventUserStatusChanged {
		t.Fatalf("event type = %q, want %q", env.Type, EventUserStatusChanged)
	}

	var payload StatusChangedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("failed to decode status payload: %v", err)
	}
	return payload
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case data := <-c.send:
		t.Fatalf("unexpected queued event: %s", data)
	default:
	}
}

func TestAnnounceAddsUserToSnapshot(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, 1)

	hub.Announce(client)

	online := hub.Snapshot()
	if len(online) != 1 || online[0] != 1 {
		t.Fatalf("Snapshot() = %v, want [1]", online)
	}

	status := mustStatusEvent(t, client)
	if status.UserID != 1 || !status.IsOnline {
		t.Fatalf("status = %+v, want user 1 online", status)
	}
}

func TestAnnounceReplacesDuplicateWithoutClosing(t *testing.T) {
	hub := NewHub()
	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)

	hub.Announce(first)
	hub.Announce(second)

	online := hub.Snapshot()
	if len(online) != 1 || online[0] != 1 {
		t.Fatalf("Snapshot() after duplicate announce = %v, want [1]", online)
	}

	// The replaced session's channel must still be open: enqueue works.
	if err := first.enqueue([]byte(`{"type":"error"}`)); err != nil {
		t.Fatalf("stale session send channel unusable: %v", err)
	}
}

func TestRemoveStaleConnectionLeavesNewerEntry(t *testing.T) {
	hub := NewHub()
	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)

	hub.Announce(first)
	hub.Announce(second)

	hub.Remove(first)

	online := hub.Snapshot()
	if len(online) != 1 || online[0] != 1 {
		t.Fatalf("Snapshot() after stale removal = %v, want [1]", online)
	}

	hub.Remove(second)
	if got := hub.Snapshot(); len(got) != 0 {
		t.Fatalf("Snapshot() after real removal = %v, want empty", got)
	}
}

func TestRemoveUnannouncedProducesNoBroadcast(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, 1)
	hub.Announce(watcher)
	mustStatusEvent(t, watcher)

	ghost := newTestClient(hub, 2)
	hub.Remove(ghost)

	assertNoEvent(t, watcher)
}

func TestStatusTransitionsArriveInOrder(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, 1)
	other := newTestClient(hub, 2)

	hub.Announce(watcher)
	hub.Announce(other)
	hub.Remove(other)

	// watcher sees: itself online, user 2 online, user 2 offline.
	self := mustStatusEvent(t, watcher)
	if self.UserID != 1 || !self.IsOnline {
		t.Fatalf("first status = %+v, want user 1 online", self)
	}

	online := mustStatusEvent(t, watcher)
	if online.UserID != 2 || !online.IsOnline {
		t.Fatalf("second status = %+v, want user 2 online", online)
	}

	offline := mustStatusEvent(t, watcher)
	if offline.UserID != 2 || offline.IsOnline {
		t.Fatalf("third status = %+v, want user 2 offline", offline)
	}
}

func TestBroadcastToRoomReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)

	room := RoomKey(1, 2)
	hub.Join(a, room)
	hub.Join(b, room)

	frame := []byte(`{"type":"receive_message"}`)
	hub.BroadcastToRoom(room, frame, nil)

	if env := mustEvent(t, a); env.Type != EventReceiveMessage {
		t.Fatalf("subscriber a got %q, want %q", env.Type, EventReceiveMessage)
	}
	if env := mustEvent(t, b); env.Type != EventReceiveMessage {
		t.Fatalf("subscriber b got %q, want %q", env.Type, EventReceiveMessage)
	}
}

func TestBroadcastToRoomSkipsExcept(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)

	room := RoomKey(1, 2)
	hub.Join(a, room)
	hub.Join(b, room)

	hub.BroadcastToRoom(room, []byte(`{"type":"user_typing"}`), a)

	assertNoEvent(t, a)
	if env := mustEvent(t, b); env.Type != EventUserTyping {
		t.Fatalf("subscriber b got %q, want %q", env.Type, EventUserTyping)
	}
}

func TestRemoveClearsRoomSubscriptions(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)

	room := RoomKey(1, 2)
	hub.Join(a, room)
	hub.Join(b, room)

	hub.Remove(a)

	hub.BroadcastToRoom(room, []byte(`{"type":"receive_message"}`), nil)

	assertNoEvent(t, a)
	if env := mustEvent(t, b); env.Type != EventReceiveMessage {
		t.Fatalf("remaining subscriber got %q, want %q", env.Type, EventReceiveMessage)
	}
}

func TestBroadcastDropsFramesWhenQueueFull(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1)

	room := RoomKey(1, 2)
	hub.Join(a, room)

	for i := 0; i < sendQueueSize; i++ {
		if err := a.enqueue([]byte("x")); err != nil {
			t.Fatalf("enqueue %d failed before queue was full: %v", i, err)
		}
	}

	// Must not block.
	hub.BroadcastToRoom(room, []byte("overflow"), nil)

	if len(a.send) != sendQueueSize {
		t.Fatalf("queue length = %d, want %d", len(a.send), sendQueueSize)
	}
}

func TestShutdownClosesSessionQueues(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)

	hub.Announce(a)
	hub.Join(b, RoomKey(1, 2))

	hub.Shutdown()

	if got := hub.Snapshot(); len(got) != 0 {
		t.Fatalf("Snapshot() after shutdown = %v, want empty", got)
	}

	for _, c := range []*Client{a, b} {
		for {
			if _, ok := <-c.send; !ok {
				break
			}
		}
	}
}

func TestEnqueueAfterShutdownFailsWithoutPanic(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1)
	hub.Announce(a)

	hub.Shutdown()

	if err := a.enqueue([]byte(`{"type":"error"}`)); err == nil {
		t.Fatal("enqueue succeeded on a shut-down session")
	}
}
