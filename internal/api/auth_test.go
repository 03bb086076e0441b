package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func authServer(t *testing.T) *Server {
	t.Helper()
	return testServer(t, Deps{Config: config.APIConfig{Auth: config.APIAuthConfig{Secret: testSecret}}})
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "dashboard", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := parseToken(token, testSecret)
	if err != nil {
		t.Fatalf("parseToken() error = %v", err)
	}
	if claims.Subject != "dashboard" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "dashboard")
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("newly issued token should not be expired")
	}
}

func TestIssueToken_Validation(t *testing.T) {
	if _, err := IssueToken("", "dashboard", time.Hour); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("IssueToken() without secret error = %v, want ErrTokenInvalid", err)
	}
	if _, err := IssueToken(testSecret, "", time.Hour); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("IssueToken() without subject error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, "dashboard", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	otherSecret, err := IssueToken("another-secret-of-sufficient-size!", "dashboard", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "dashboard",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"missing subject", noSubject},
		{"unexpected signing method", wrongAlg},
		{"malformed", "abc.def"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseToken(tt.token, testSecret); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("parseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	valid, err := IssueToken(testSecret, "dashboard", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	expired, err := IssueToken(testSecret, "dashboard", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{"health stays open", "/api/v1/health", "", http.StatusOK},
		{"missing token", "/api/v1/entities", "", http.StatusUnauthorized},
		{"wrong scheme", "/api/v1/entities", "Basic " + valid, http.StatusUnauthorized},
		{"expired token", "/api/v1/entities", "Bearer " + expired, http.StatusUnauthorized},
		{"bad signature", "/api/v1/entities", "Bearer " + valid + "x", http.StatusUnauthorized},
		{"valid token", "/api/v1/entities", "Bearer " + valid, http.StatusOK},
		{"valid token single entity", "/api/v1/entities/io-1", "Bearer " + valid, http.StatusOK},
		{"query token ignored for REST", "/api/v1/entities?token=" + valid, "", http.StatusUnauthorized},
	}

	router := authServer(t).buildRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if !strings.Contains(rec.Body.String(), ErrCodeUnauthorized) {
					t.Errorf("body = %s, want code %q", rec.Body.String(), ErrCodeUnauthorized)
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("WWW-Authenticate header not set")
				}
			}
		})
	}
}

func TestAuthMiddleware_NoSecretPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t, Deps{}).buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/entities", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestWebSocket_RequiresToken(t *testing.T) {
	srv := authServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.hub.Run(ctx)

	ts := httptest.NewServer(srv.buildRouter())
	defer ts.Close()
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	if err == nil {
		t.Fatal("Dial() without token succeeded, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake response = %v, want 401", resp)
	}

	token, err := IssueToken(testSecret, "dashboard", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+token, nil)
	if err != nil {
		t.Fatalf("Dial() with query token error = %v", err)
	}
	conn.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err = websocket.DefaultDialer.Dial(base, header)
	if err != nil {
		t.Fatalf("Dial() with bearer header error = %v", err)
	}
	conn.Close()
}
