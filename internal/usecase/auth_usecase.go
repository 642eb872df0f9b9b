package usecase

import (
	"context"
	"strings"
	"sync"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"
)

type authUsecase struct {
	gateway domain.AuthGateway
	// inFlight holds the session keys with a login underway.
	inFlight sync.Map
}

func NewAuthUsecase(gateway domain.AuthGateway) domain.AuthUsecase {
	return &authUsecase{gateway: gateway}
}

// Login makes exactly one attempt per call. The session is written only after
// the API issued a token.
func (u *authUsecase) Login(ctx context.Context, role domain.Role, creds domain.Credentials) (*domain.LoginResult, error) {
	m, err := sessionManager(ctx)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperror.BadRequest("Unknown account type")
	}

	creds.Username = strings.TrimSpace(creds.Username)
	fields := map[string]string{}
	if creds.Username == "" {
		fields["username"] = "Username is required"
	}
	if creds.Password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Please fix the highlighted fields", fields)
	}

	if _, busy := u.inFlight.LoadOrStore(m.Key(), struct{}{}); busy {
		return nil, submitInProgress()
	}
	defer u.inFlight.Delete(m.Key())

	token, err := u.gateway.Login(ctx, role, creds)
	if err != nil {
		logger.Log.Info("Login rejected", "username", creds.Username, "role", role, "error", err)
		return nil, err
	}

	if err := m.SetSession(ctx, token, role, creds.Username); err != nil {
		return nil, err
	}
	logger.Log.Info("Login succeeded", "username", creds.Username, "role", role)

	return &domain.LoginResult{
		Username: creds.Username,
		UserType: role,
		Next:     role.LandingRoute(),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context) error {
	m, err := sessionManager(ctx)
	if err != nil {
		return err
	}
	return m.Clear(ctx)
}

// RecoverToken rebuilds a graduate session from the API's own session cookie.
// It reports false when the API has no session for this client.
func (u *authUsecase) RecoverToken(ctx context.Context, username string) (bool, error) {
	m, err := sessionManager(ctx)
	if err != nil {
		return false, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return false, apperror.Validation("Username is required", map[string]string{"username": "Username is required"})
	}

	token, err := u.gateway.RecoverGraduateToken(ctx)
	if err != nil {
		if apperror.IsNotFound(err) || apperror.IsUnauthorized(err) {
			return false, nil
		}
		return false, err
	}

	if err := m.SetSession(ctx, token, domain.RoleGraduate, username); err != nil {
		return false, err
	}
	return true, nil
}

// CurrentSession returns the stored session or Unauthorized.
func (u *authUsecase) CurrentSession(ctx context.Context) (*domain.Session, error) {
	_, sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
