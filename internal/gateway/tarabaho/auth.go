package tarabaho

import (
	"context"
	"errors"
	"net/http"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token at the role's token endpoint.
func (c *Client) Login(ctx context.Context, role domain.Role, creds domain.Credentials) (string, error) {
	path := "/api/user/token"
	if role == domain.RoleGraduate {
		path = "/api/graduate/token"
	}

	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, path, "", creds, &resp); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError &&
			appErr.Message == http.StatusText(appErr.Code) {
			appErr.Message = "Invalid credentials"
		}
		return "", err
	}
	if resp.Token == "" {
		return "", apperror.Unauthorized("Invalid credentials")
	}
	return resp.Token, nil
}

// RecoverGraduateToken asks the API for the token bound to its session cookie.
func (c *Client) RecoverGraduateToken(ctx context.Context) (string, error) {
	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/graduate/get-token", "", nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperror.NotFound("No active session")
	}
	return resp.Token, nil
}

type userRegistrationPayload struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Birthday    string `json:"birthday"`
}

func (c *Client) RegisterUser(ctx context.Context, req *domain.UserRegistration) error {
	payload := userRegistrationPayload{
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.ContactNumber,
		Birthday:    req.Birthday,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/user/register", "", payload, nil)
}

type graduateRegistrationPayload struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	FirstName  string  `json:"firstName"`
	MiddleName string  `json:"middleName,omitempty"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Address    string  `json:"address"`
	ContactNo  string  `json:"contactNo"`
	Birthday   string  `json:"birthday"`
	Hourly     float64 `json:"hourly"`
}

func (c *Client) RegisterGraduate(ctx context.Context, req *domain.GraduateRegistration) error {
	payload := graduateRegistrationPayload{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Email:      req.Email,
		Address:    req.Address,
		ContactNo:  req.ContactNumber,
		Birthday:   req.Birthday,
		Hourly:     req.HourlyRate,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/graduate/register", "", payload, nil)
}

// CheckGraduateDuplicates returns nil when username, email and phone are free.
// Any conflict comes back as an AppError holding the API's message.
func (c *Client) CheckGraduateDuplicates(ctx context.Context, req domain.DuplicateCheck) error {
	return c.doJSON(ctx, http.MethodPost, "/api/graduate/check-duplicates", "", req, nil)
}
