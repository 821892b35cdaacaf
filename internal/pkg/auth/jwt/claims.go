package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the identity claims carried by tokens minted by the
// platform's auth service. The realtime core only consumes these; it
// never issues credentials itself.
type Payload struct {
	// StandardClaims embeds Exp/Iat/Iss used for validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the numeric account identifier assigned at registration.
	UserID int64 `json:"user_id"`

	// Username is the account's display handle at token issue time.
	Username string `json:"username"`
}
