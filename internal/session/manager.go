package session

import (
	"context"
	"errors"
	"time"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/auth"
	"tarabaho-web/pkg/logger"
)

// Manager is the session of one client: one key in one store.
type Manager struct {
	store domain.SessionStore
	key   string
	now   func() time.Time
}

var _ domain.SessionManager = (*Manager)(nil)

func NewManager(store domain.SessionStore, key string) *Manager {
	return &Manager{store: store, key: key, now: time.Now}
}

// WithClock replaces the clock used for token expiry checks.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Key() string {
	return m.key
}

// SetSession stores a fresh session, replacing any previous one.
func (m *Manager) SetSession(ctx context.Context, token string, userType domain.Role, username string) error {
	sess := &domain.Session{
		Token:     token,
		UserType:  userType,
		Username:  username,
		CreatedAt: m.now(),
	}
	if err := m.store.Save(ctx, m.key, sess); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Current returns the stored session, or nil when there is none or its token
// has expired. An expired session is cleared on the way.
func (m *Manager) Current(ctx context.Context) (*domain.Session, error) {
	sess, err := m.store.Load(ctx, m.key)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !sess.LoggedIn() {
		return nil, nil
	}

	info, err := auth.Inspect(sess.Token)
	if err != nil && !errors.Is(err, auth.ErrOpaqueToken) {
		logger.Log.Debug("Stored token could not be inspected", "error", err)
	}
	if err == nil && info.Expired(m.now()) {
		logger.Log.Info("Stored token expired, clearing session", "username", sess.Username)
		if err := m.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sess, nil
}

func (m *Manager) Token(ctx context.Context) (string, bool, error) {
	sess, err := m.Current(ctx)
	if err != nil {
		return "", false, err
	}
	if sess == nil {
		return "", false, nil
	}
	return sess.Token, true, nil
}

// SetPortfolioID remembers the graduate's portfolio id next to the session.
func (m *Manager) SetPortfolioID(ctx context.Context, id int64) error {
	sess, err := m.store.Load(ctx, m.key)
	if err != nil {
		return apperror.Internal(err)
	}
	if sess == nil {
		return nil
	}
	sess.PortfolioID = id
	if err := m.store.Save(ctx, m.key, sess); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
