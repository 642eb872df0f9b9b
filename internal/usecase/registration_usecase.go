package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const registrationFailed = "Please fix the highlighted fields"

type registrationUsecase struct {
	gateway  domain.AuthGateway
	validate *validator.Validate
}

func NewRegistrationUsecase(gateway domain.AuthGateway, validate *validator.Validate) domain.RegistrationUsecase {
	return &registrationUsecase{gateway: gateway, validate: validate}
}

// RegisterUser validates locally and only then calls the API. It never signs
// the new account in.
func (u *registrationUsecase) RegisterUser(ctx context.Context, req *domain.UserRegistration) (*domain.RegistrationResult, error) {
	trimUserRegistration(req)
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.Validation(registrationFailed, validation.FieldErrors(err))
	}

	if err := u.gateway.RegisterUser(ctx, req); err != nil {
		logger.Log.Info("User registration rejected", "username", req.Username, "error", err)
		return nil, err
	}

	return &domain.RegistrationResult{
		Message: "Registration successful. You can now log in.",
		Next:    domain.LoginRoute,
	}, nil
}

func (u *registrationUsecase) RegisterGraduate(ctx context.Context, req *domain.GraduateRegistration) (*domain.RegistrationResult, error) {
	trimGraduateRegistration(req)
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.Validation(registrationFailed, validation.FieldErrors(err))
	}

	err := u.gateway.CheckGraduateDuplicates(ctx, domain.DuplicateCheck{
		Username:      req.Username,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		return nil, duplicateError(err)
	}

	if err := u.gateway.RegisterGraduate(ctx, req); err != nil {
		logger.Log.Info("Graduate registration rejected", "username", req.Username, "error", err)
		return nil, err
	}

	return &domain.RegistrationResult{
		Message: "Registration successful. You can now log in.",
		Next:    domain.LoginRoute,
	}, nil
}

var duplicateMessages = []struct {
	substring string
	field     string
}{
	{"Username already exists", "username"},
	{"Email already exists", "email"},
	{"Phone number already exists", "contactNo"},
}

// duplicateError turns a rejected duplicate check into field errors. A
// structured field from the API wins over matching the message text.
func duplicateError(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code >= http.StatusInternalServerError {
		return err
	}

	fields := map[string]string{}
	for field, msg := range appErr.Fields {
		fields[normalizeDuplicateField(field)] = msg
	}
	if len(fields) == 0 {
		for _, d := range duplicateMessages {
			if strings.Contains(appErr.Message, d.substring) {
				fields[d.field] = d.substring
			}
		}
	}
	if len(fields) == 0 {
		fields["general"] = appErr.Message
	}
	return apperror.Validation(appErr.Message, fields)
}

func normalizeDuplicateField(field string) string {
	switch strings.ToLower(field) {
	case "contactno", "contact", "phone", "phonenumber":
		return "contactNo"
	default:
		return field
	}
}

func trimUserRegistration(req *domain.UserRegistration) {
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)
}

func trimGraduateRegistration(req *domain.GraduateRegistration) {
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.MiddleName = strings.TrimSpace(req.MiddleName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)
}
