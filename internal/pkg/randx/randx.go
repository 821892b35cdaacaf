/*
Package randx generates random identifiers for stored objects.

It currently covers avatar object keys: a per-user prefix plus a UUID
and the original file extension, so replacing an avatar never collides
with the previous object.
*/
package randx

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AvatarKeyPrefix is the top-level folder for avatar objects.
const AvatarKeyPrefix = "avatars"

// AvatarKey builds a storage object key for a user's avatar upload,
// e.g. "avatars/42/5f3a....png". The extension is taken from fileName
// and lowercased.
func AvatarKey(userID int64, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%d/%s%s", AvatarKeyPrefix, userID, uuid.New().String(), ext)
}

// IsAvatarKey reports whether key addresses an object under the avatar
// prefix for the given user. Used to stop one user deleting or reading
// another user's objects.
func IsAvatarKey(key string, userID int64) bool {
	return strings.HasPrefix(key, fmt.Sprintf("%s/%d/", AvatarKeyPrefix, userID))
}

// IsStorageKey reports whether the stored avatar reference is an object
// key (resolvable to a presigned URL) rather than an absolute URL kept
// from an external host.
func IsStorageKey(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}
