/*
Package errs defines the application error type and the catalogue of
business error codes.

This file maps every code to its message template and HTTP status.
A zero Status means HTTP 200 with a non-zero business code in the body.
*/
package errs

import "net/http"

// errorMap holds the CustomError template for every application error
// code. NewError copies the template before applying details.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large."},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat and Messaging Errors
	ErrEmptyMessageContent:   {Code: ErrEmptyMessageContent, Message: "Message content cannot be empty."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMissingParticipant:    {Code: ErrMissingParticipant, Message: "Both conversation participants are required."},
	ErrSenderMismatch:        {Code: ErrSenderMismatch, Message: "Sender does not match the connected user."},
	ErrNotIdentified:         {Code: ErrNotIdentified, Message: "Connection has not announced a user identity."},

	// 3xxx: Identity and Session Errors
	ErrUnauthorized:      {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidAvatarFile: {Code: ErrInvalidAvatarFile, Message: "Avatar must be an image up to %d MB."},

	// 4xxx: Persistence Errors
	ErrMessageNotSaved: {Code: ErrMessageNotSaved, Message: "Message could not be saved. Please try again."},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again."},
}
