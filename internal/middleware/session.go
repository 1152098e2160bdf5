package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/eats/internal/config"
	"github.com/Alturino/eats/internal/constants"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
)

func IssueSessionToken(cfg config.Session, sessionID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    constants.SessionIssuer,
		Audience:  jwt.ClaimStrings{constants.SessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing session token with error=%w", err)
	}
	return token, nil
}

func VerifySessionToken(c context.Context, cfg config.Session, token string) (string, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifySessionToken").
		Str(log.KeyProcess, "parsing claims").
		Logger()

	claims := &jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.SecretKey), nil
		},
		jwt.WithAudience(constants.SessionAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.SessionIssuer),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing session claims with error=%w: %w", inErrors.ErrSessionInvalid, err)
		logger.Debug().Err(err).Msg(err.Error())
		return "", err
	}
	if !jwtToken.Valid {
		return "", inErrors.ErrSessionInvalid
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("session subject=%s with error=%w", claims.Subject, inErrors.ErrSessionInvalid)
	}
	logger.Trace().Str(log.KeySessionID, claims.Subject).Msg("parsed claims")

	return claims.Subject, nil
}

// Session resolves the anonymous browsing session of the request from the
// session cookie. A missing, expired or tampered cookie starts a new session.
func Session(cfg config.Session) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Session").Logger()

			sessionID := ""
			if cookie, err := r.Cookie(constants.CookieSession); err == nil {
				sessionID, _ = VerifySessionToken(c, cfg, cookie.Value)
			}

			if sessionID == "" {
				logger = logger.With().Str(log.KeyProcess, "issuing session").Logger()
				logger.Debug().Msg("issuing session")
				sessionID = uuid.NewString()
				now := time.Now()
				token, err := IssueSessionToken(cfg, sessionID, now)
				if err != nil {
					logger.Error().Err(err).Msg(err.Error())
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     constants.CookieSession,
					Value:    token,
					Path:     "/",
					Expires:  now.Add(cfg.TTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug().Str(log.KeySessionID, sessionID).Msg("issued session")
			}

			logger = logger.With().Str(log.KeySessionID, sessionID).Logger()
			c = log.AttachSessionIDToContext(c, sessionID)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
