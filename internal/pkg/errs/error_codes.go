/*
Package errs defines the application error type and the catalogue of
business error codes.

Codes are grouped by concern so clients can branch on ranges: request
handling, chat/messaging, identity/session, persistence, internal.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates the per-IP request rate was exceeded.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Chat and Messaging Errors
const (
	// ErrEmptyMessageContent indicates a send with blank or whitespace-only content.
	ErrEmptyMessageContent = 2101

	// ErrMessageContentTooLong indicates message content over the size limit.
	ErrMessageContentTooLong = 2102

	// ErrMissingParticipant indicates a chat event without both participant IDs.
	ErrMissingParticipant = 2103

	// ErrSenderMismatch indicates the event's sender ID does not match the
	// authenticated session identity.
	ErrSenderMismatch = 2104

	// ErrNotIdentified indicates a send/typing event on a session that has
	// not announced itself online or joined a conversation.
	ErrNotIdentified = 2105
)

// 3xxx: Identity and Session Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3001

	// ErrInvalidAvatarFile indicates a rejected avatar upload (type or size).
	ErrInvalidAvatarFile = 3002
)

// 4xxx: Persistence Errors
const (
	// ErrMessageNotSaved indicates the message insert failed or timed out;
	// the message was not broadcast.
	ErrMessageNotSaved = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates an avatar storage operation failed.
	ErrFileStorageFailed = 5001
)
