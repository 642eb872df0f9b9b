package domain

import (
	"context"
	"time"
)

// Session is the identity kept on the client between requests.
type Session struct {
	Token       string    `json:"authToken"`
	UserType    Role      `json:"userType"`
	Username    string    `json:"username"`
	PortfolioID int64     `json:"portfolioId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// SessionStore persists sessions under a key: a browser session id for the
// web server, a fixed profile name for the CLI. Load returns (nil, nil) when
// nothing is stored.
type SessionStore interface {
	Save(ctx context.Context, key string, s *Session) error
	Load(ctx context.Context, key string) (*Session, error)
	Delete(ctx context.Context, key string) error
}

// SessionManager is the session of one client.
type SessionManager interface {
	// Key identifies the client; concurrent requests of one client share it.
	Key() string
	SetSession(ctx context.Context, token string, userType Role, username string) error
	// Token returns ok=false when there is no usable token; callers must
	// re-authenticate rather than treat it as an error.
	Token(ctx context.Context) (token string, ok bool, err error)
	Current(ctx context.Context) (*Session, error)
	SetPortfolioID(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}

func WithSessionManager(ctx context.Context, m SessionManager) context.Context {
	return context.WithValue(ctx, KeySessionManager, m)
}

func SessionManagerFrom(ctx context.Context) (SessionManager, bool) {
	m, ok := ctx.Value(KeySessionManager).(SessionManager)
	return m, ok && m != nil
}

type LoginResult struct {
	Username string `json:"username"`
	UserType Role   `json:"userType"`
	Next     string `json:"next"`
}

type AuthUsecase interface {
	Login(ctx context.Context, role Role, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) error
	// RecoverToken restores a graduate session from the API's session cookie.
	RecoverToken(ctx context.Context, username string) (bool, error)
	CurrentSession(ctx context.Context) (*Session, error)
}
