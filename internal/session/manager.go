// Package session issues and resolves per-client session tokens.
//
// A token is an HS256 JWT carrying the user id and a session id. The session id
// must also be present in the session store, so logout takes effect immediately
// even though the token itself has not expired.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"novara/internal/model"
	"novara/internal/repository"
)

// Manager creates, resolves and revokes sessions.
type Manager struct {
	store  repository.SessionRepository
	secret []byte
	maxAge time.Duration
	logger zerolog.Logger
}

// Issued is a freshly created session and its signed token.
type Issued struct {
	Token   string
	Session *model.Session
}

func NewManager(store repository.SessionRepository, secret string, maxAge time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		maxAge: maxAge,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// MaxAge is the lifetime of new sessions.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// Create starts a new session for userID.
func (m *Manager) Create(ctx context.Context, userID int64) (*Issued, error) {
	now := time.Now()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.maxAge),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"sid":     sess.ID,
		"exp":     sess.ExpiresAt.Unix(),
		"iat":     now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	m.logger.Debug().Int64("user_id", userID).Str("sid", sess.ID).Msg("session created")
	return &Issued{Token: token, Session: sess}, nil
}

// Resolve verifies the token and returns its live session.
// Errors: ErrTokenInvalid, ErrSessionExpired, ErrSessionNotFound.
func (m *Manager) Resolve(ctx context.Context, tokenString string) (*model.Session, error) {
	userID, sid, err := m.parse(tokenString, false)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != userID {
		return nil, model.ErrTokenInvalid
	}
	return sess, nil
}

// Revoke ends the session behind the token. Expired tokens can still be
// revoked; unknown or malformed tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	_, sid, err := m.parse(tokenString, true)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Debug().Str("sid", sid).Msg("session revoked")
	return nil
}

func (m *Manager) parse(tokenString string, allowExpired bool) (int64, string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", model.ErrSessionExpired
		}
		return 0, "", model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", model.ErrTokenInvalid
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", model.ErrTokenInvalid
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return 0, "", model.ErrTokenInvalid
	}
	return int64(userIDFloat), sid, nil
}
