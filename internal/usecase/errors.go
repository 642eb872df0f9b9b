package usecase

import (
	"errors"
	"net/http"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
)

var errSessionMissing = errors.New("usecase: no session manager in context")

// submitInProgress rejects a second submit while the first is still running.
// It unwraps to domain.ErrSubmitInProgress.
func submitInProgress() error {
	return apperror.New(http.StatusConflict, "Please wait, your previous request is still being processed", domain.ErrSubmitInProgress)
}
