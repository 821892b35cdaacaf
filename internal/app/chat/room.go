/*
Package chat implements the realtime direct-messaging core.

This file derives conversation room keys. A room is a computed label
for a two-party conversation, never a stored entity: there is no
creation step and nothing to clean up.
*/
package chat

import "fmt"

// RoomKey returns the canonical identifier for the conversation between
// two users. The smaller ID always comes first, so
// RoomKey(a, b) == RoomKey(b, a) for all a, b.
func RoomKey(userA, userB int64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("room_%d_%d", userA, userB)
}
