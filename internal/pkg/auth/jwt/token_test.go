package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "unit-test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: 42, Username: "aditi"}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	payload, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if payload.UserID != 42 {
		t.Errorf("UserID = %d, want 42", payload.UserID)
	}
	if payload.Username != "aditi" {
		t.Errorf("Username = %q, want %q", payload.Username, "aditi")
	}
	if payload.Issuer != TokenIssuer {
		t.Errorf("Issuer = %q, want %q", payload.Issuer, TokenIssuer)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: 1}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, "some-other-secret"); err == nil {
		t.Fatal("ParseToken accepted a token signed with a different secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: 1}, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("ParseToken accepted an expired token")
	}
}

func extractedPayload(t *testing.T, req *http.Request) *Payload {
	t.Helper()

	var got *Payload
	handler := IdentityExtractorMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPayloadFromContext(r)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestMiddlewareExtractsBearerToken(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: 7, Username: "rahul"}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/online_status", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	payload := extractedPayload(t, req)
	if payload == nil || payload.UserID != 7 {
		t.Fatalf("payload = %+v, want user 7", payload)
	}
}

func TestMiddlewareExtractsQueryToken(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: 7}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)

	payload := extractedPayload(t, req)
	if payload == nil || payload.UserID != 7 {
		t.Fatalf("payload = %+v, want user 7", payload)
	}
}

func TestMiddlewarePassesAnonymousThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/online_status", nil)

	if payload := extractedPayload(t, req); payload != nil {
		t.Fatalf("payload = %+v, want nil for anonymous request", payload)
	}
}

func TestMiddlewareTreatsGarbageTokenAsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/online_status", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")

	if payload := extractedPayload(t, req); payload != nil {
		t.Fatalf("payload = %+v, want nil for invalid token", payload)
	}
}
