package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned when a bearer token fails validation.
var ErrTokenInvalid = errors.New("invalid token")

// DefaultTokenTTL is the lifetime of tokens issued without an explicit TTL.
const DefaultTokenTTL = 24 * time.Hour

// IssueToken signs an HS256 bearer token for subject with the shared API
// secret. A non-positive ttl falls back to DefaultTokenTTL.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: no secret configured", ErrTokenInvalid)
	}
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// parseToken validates signature, expiry and subject.
func parseToken(tokenString, secret string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

// bearerToken extracts the token from the Authorization header. Browsers
// cannot set headers on a WebSocket upgrade, so a token query parameter is
// accepted when allowQuery is set.
func bearerToken(r *http.Request, allowQuery bool) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

// authMiddleware requires a valid bearer token when an API secret is
// configured. With no secret every request passes through.
func (s *Server) authMiddleware(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := s.cfg.Auth.Secret
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r, allowQuery)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := parseToken(token, secret)
			if err != nil {
				s.logger.Debug("rejected API token",
					"path", r.URL.Path,
					"error", err,
					"request_id", r.Context().Value(ctxKeyRequestID),
				)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			s.logger.Debug("authenticated API request", "subject", claims.Subject, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
