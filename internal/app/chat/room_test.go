package chat

import "testing"

func TestRoomKeyOrdersParticipants(t *testing.T) {
	if got := RoomKey(3, 7); got != "room_3_7" {
		t.Fatalf("RoomKey(3, 7) = %q, want %q", got, "room_3_7")
	}

	if got := RoomKey(7, 3); got != "room_3_7" {
		t.Fatalf("RoomKey(7, 3) = %q, want %q", got, "room_3_7")
	}
}

func TestRoomKeySymmetric(t *testing.T) {
	pairs := [][2]int64{
		{1, 2},
		{42, 42},
		{100, 1},
		{999999, 1000000},
	}

	for _, pair := range pairs {
		forward := RoomKey(pair[0], pair[1])
		backward := RoomKey(pair[1], pair[0])
		if forward != backward {
			t.Errorf("RoomKey(%d, %d) = %q but RoomKey(%d, %d) = %q",
				pair[0], pair[1], forward, pair[1], pair[0], backward)
		}
	}
}

func TestRoomKeyEqualParticipants(t *testing.T) {
	if got := RoomKey(5, 5); got != "room_5_5" {
		t.Fatalf("RoomKey(5, 5) = %q, want %q", got, "room_5_5")
	}
}
