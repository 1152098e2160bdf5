package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/eats/internal/config"
	"github.com/Alturino/eats/internal/constants"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
)

var sessionConfig = config.Session{SecretKey: "secret", TTL: 30 * time.Minute}

func serveSession(t *testing.T, cookie *http.Cookie) (string, *httptest.ResponseRecorder) {
	t.Helper()
	sessionID := ""
	handler := Session(sessionConfig)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID = log.SessionIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/search/London", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return sessionID, rec
}

func TestSession(t *testing.T) {
	t.Run("given no cookie should issue a session", func(t *testing.T) {
		sessionID, rec := serveSession(t, nil)
		_, err := uuid.Parse(sessionID)
		require.NoError(t, err, "session id should be a uuid")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, constants.CookieSession, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		verified, err := VerifySessionToken(context.Background(), sessionConfig, cookies[0].Value)
		require.NoError(t, err)
		assert.Equal(t, sessionID, verified)
	})

	t.Run("given valid cookie should keep the session", func(t *testing.T) {
		expected := uuid.NewString()
		token, err := IssueSessionToken(sessionConfig, expected, time.Now())
		require.NoError(t, err)

		sessionID, rec := serveSession(t, &http.Cookie{Name: constants.CookieSession, Value: token})
		assert.Equal(t, expected, sessionID)
		assert.Empty(t, rec.Result().Cookies(), "valid session should not be reissued")
	})

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name: "given expired cookie should issue a new session",
			token: func() string {
				token, _ := IssueSessionToken(sessionConfig, uuid.NewString(), time.Now().Add(-time.Hour))
				return token
			},
		},
		{
			name: "given cookie signed with another key should issue a new session",
			token: func() string {
				token, _ := IssueSessionToken(
					config.Session{SecretKey: "other", TTL: time.Hour},
					uuid.NewString(),
					time.Now(),
				)
				return token
			},
		},
		{
			name:  "given garbage cookie should issue a new session",
			token: func() string { return "not-a-token" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.token()
			_, err := VerifySessionToken(context.Background(), sessionConfig, token)
			assert.ErrorIs(t, err, inErrors.ErrSessionInvalid)

			sessionID, rec := serveSession(t, &http.Cookie{Name: constants.CookieSession, Value: token})
			assert.NotEmpty(t, sessionID)
			assert.Len(t, rec.Result().Cookies(), 1, "new session cookie should be set")
		})
	}
}
