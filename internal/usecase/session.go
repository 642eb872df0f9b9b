package usecase

import (
	"context"
	"net/http"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"
)

func sessionManager(ctx context.Context) (domain.SessionManager, error) {
	m, ok := domain.SessionManagerFrom(ctx)
	if !ok {
		return nil, apperror.Internal(errSessionMissing)
	}
	return m, nil
}

// requireSession returns the signed-in session, or Unauthorized when the
// client has to log in again.
func requireSession(ctx context.Context) (domain.SessionManager, *domain.Session, error) {
	m, err := sessionManager(ctx)
	if err != nil {
		return nil, nil, err
	}
	sess, err := m.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !sess.LoggedIn() {
		return nil, nil, apperror.Unauthorized("Please log in to continue")
	}
	return m, sess, nil
}

func requireGraduate(ctx context.Context) (domain.SessionManager, *domain.Session, error) {
	m, sess, err := requireSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sess.UserType != domain.RoleGraduate {
		return nil, nil, apperror.Forbidden("Only graduates have a portfolio")
	}
	return m, sess, nil
}

// dropOnUnauthorized clears the session when the API rejected its token.
func dropOnUnauthorized(ctx context.Context, m domain.SessionManager, err error) error {
	if !apperror.IsUnauthorized(err) {
		return err
	}
	if clearErr := m.Clear(ctx); clearErr != nil {
		logger.Log.Error("Failed to clear rejected session", "error", clearErr)
	}
	return apperror.New(http.StatusUnauthorized, "Your session has expired. Please log in again.", err)
}
