package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/gorilla/websocket"

	"github.com/Woeter69/algo/internal/app/chat"
	"github.com/Woeter69/algo/internal/pkg/auth/jwt"
	"github.com/Woeter69/algo/internal/pkg/errs"
	"github.com/Woeter69/algo/internal/pkg/limiter"
)

func TestOnlineStatusReturnsFlatShape(t *testing.T) {
	hub := chat.NewHub()
	hub.Announce(chat.NewClient(hub, nil, nil, 5, ""))

	deps := &AppDeps{Hub: hub}

	req := httptest.NewRequest(http.MethodGet, "/api/online_status", nil)
	rec := httptest.NewRecorder()

	HandleOnlineStatus(deps)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	// The polling client reads online_users at the top level, not inside
	// an envelope.
	var body struct {
		OnlineUsers []int64 `json:"online_users"`
		Code        *int    `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if body.Code != nil {
		t.Fatal("response carries an envelope code field, want flat shape")
	}
	if len(body.OnlineUsers) != 1 || body.OnlineUsers[0] != 5 {
		t.Fatalf("online_users = %v, want [5]", body.OnlineUsers)
	}
}

func TestOnlineStatusEmptyListNotNull(t *testing.T) {
	deps := &AppDeps{Hub: chat.NewHub()}

	req := httptest.NewRequest(http.MethodGet, "/api/online_status", nil)
	rec := httptest.NewRecorder()

	HandleOnlineStatus(deps)(rec, req)

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if string(body["online_users"]) != "[]" {
		t.Fatalf("online_users = %s, want []", body["online_users"])
	}
}

func TestWebSocketRejectsAnonymous(t *testing.T) {
	deps := &AppDeps{Hub: chat.NewHub()}
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(100), 100)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()

	HandleWebSocket(websocket.Upgrader{}, connectLimiter, deps)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Code != errs.ErrUnauthorized {
		t.Fatalf("code = %d, want %d", body.Code, errs.ErrUnauthorized)
	}
}

func responseCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()

	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body.Code
}

// updateProfileRecorder runs HandleUpdateProfile behind the identity
// middleware, authenticated when token is non-empty.
func updateProfileRecorder(t *testing.T, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	deps := &AppDeps{Hub: chat.NewHub()}
	handlerFunc := jwt.IdentityExtractorMiddleware("unit-test-secret")(HandleUpdateProfile(deps))

	req := httptest.NewRequest(http.MethodPost, "/api/user/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handlerFunc.ServeHTTP(rec, req)
	return rec
}

func TestUpdateProfileRequiresIdentity(t *testing.T) {
	rec := updateProfileRecorder(t, "", "application/json", `{"username":"aditi"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if code := responseCode(t, rec); code != errs.ErrUnauthorized {
		t.Fatalf("code = %d, want %d", code, errs.ErrUnauthorized)
	}
}

func TestUpdateProfileRejectsBadBodies(t *testing.T) {
	token, err := jwt.GenerateToken(&jwt.Payload{UserID: 1, Username: "aditi"}, "unit-test-secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{"wrong content type", "text/plain", `{"username":"aditi"}`, errs.ErrUnsupportedMediaType},
		{"malformed json", "application/json", `{not json`, errs.ErrInvalidJSONFormat},
		{"unknown field", "application/json", `{"username":"aditi","admin":true}`, errs.ErrInvalidJSONFormat},
		{"empty username", "application/json", `{"username":"   "}`, errs.ErrInvalidParams},
		{"username too long", "application/json", `{"username":"` + strings.Repeat("x", 51) + `"}`, errs.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := updateProfileRecorder(t, token, tt.contentType, tt.body)

			if code := responseCode(t, rec); code != tt.wantCode {
				t.Fatalf("code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestWebSocketRateLimited(t *testing.T) {
	deps := &AppDeps{Hub: chat.NewHub()}
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(0.001), 1)

	handlerFunc := HandleWebSocket(websocket.Upgrader{}, connectLimiter, deps)

	first := httptest.NewRequest(http.MethodGet, "/ws", nil)
	first.RemoteAddr = "10.0.0.9:1234"
	handlerFunc(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodGet, "/ws", nil)
	second.RemoteAddr = "10.0.0.9:1235"
	rec := httptest.NewRecorder()
	handlerFunc(rec, second)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}
