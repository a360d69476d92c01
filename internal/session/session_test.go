package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"gastos/internal/log"
)

const secret = "0123456789abcdef0123"

func TestIssueAndParse(t *testing.T) {
	token, err := Issue(secret, "ana", time.Hour)
	require.NoError(t, err)

	s, err := Parse(secret, token)
	require.NoError(t, err)
	require.Equal(t, "ana", s.OwnerID)
	require.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	expired, err := issueAt(secret, "ana", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	other, err := Issue("another-secret-entirely", "ana", time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ana"}).SignedString([]byte(secret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	wrongMethod, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "ana",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"no expiry":    noExp,
		"no subject":   noSubject,
		"wrong method": wrongMethod,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(secret, token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssueRequiresOwner(t *testing.T) {
	_, err := Issue(secret, " ", time.Hour)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var seen Session
	h := Middleware(secret, log.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = s
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), ErrMissingToken.Error())
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := Issue(secret, "ana", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "ana", seen.OwnerID)
	})
}
