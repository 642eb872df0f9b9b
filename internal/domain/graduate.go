package domain

import "context"

type Role string

const (
	RoleUser     Role = "user"
	RoleGraduate Role = "graduate"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleGraduate
}

// LandingRoute is where a freshly signed-in account goes.
func (r Role) LandingRoute() string {
	if r == RoleGraduate {
		return "/graduate/portfolio"
	}
	return "/user/browse"
}

const LoginRoute = "/login"

type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Graduate is a TESDA-certified graduate account as returned by the API.
type Graduate struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	FirstName      string  `json:"firstName" validate:"required,valid_name"`
	MiddleName     string  `json:"middleName,omitempty" validate:"omitempty,valid_name"`
	LastName       string  `json:"lastName" validate:"required,valid_name"`
	Email          string  `json:"email" validate:"required,email"`
	ContactNumber  string  `json:"contactNo" validate:"required,valid_phone"`
	Address        string  `json:"address" validate:"required"`
	Birthday       string  `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	HourlyRate     float64 `json:"hourly" validate:"omitempty,positive_rate"`
	ProfilePicture string  `json:"profilePicture,omitempty"`
}

func (g *Graduate) FullName() string {
	name := g.FirstName
	if g.MiddleName != "" {
		name += " " + g.MiddleName
	}
	return name + " " + g.LastName
}

// UserRegistration is the client account sign-up form.
type UserRegistration struct {
	Username        string `json:"username" validate:"required,max=50,no_emoji"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required,valid_name"`
	LastName        string `json:"lastName" validate:"required,valid_name"`
	Email           string `json:"email" validate:"required,email"`
	Address         string `json:"address" validate:"required"`
	ContactNumber   string `json:"phoneNumber" validate:"required,valid_phone"`
	Birthday        string `json:"birthday" validate:"required,datetime=2006-01-02,past_date"`
}

// GraduateRegistration is the graduate sign-up form.
type GraduateRegistration struct {
	Username        string  `json:"username" validate:"required,max=50,no_emoji"`
	Password        string  `json:"password" validate:"required,min=6"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string  `json:"firstName" validate:"required,valid_name"`
	MiddleName      string  `json:"middleName,omitempty" validate:"omitempty,valid_name"`
	LastName        string  `json:"lastName" validate:"required,valid_name"`
	Email           string  `json:"email" validate:"required,email"`
	Address         string  `json:"address" validate:"required"`
	ContactNumber   string  `json:"contactNo" validate:"required,valid_phone"`
	Birthday        string  `json:"birthday" validate:"required,datetime=2006-01-02,past_date"`
	HourlyRate      float64 `json:"hourly" validate:"positive_rate"`
}

// DuplicateCheck is the pre-flight uniqueness probe for graduate sign-up.
type DuplicateCheck struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNo"`
}

type RegistrationResult struct {
	Message string `json:"message"`
	Next    string `json:"next"`
}

type AuthGateway interface {
	// Login returns the bearer token issued for the role's account.
	Login(ctx context.Context, role Role, creds Credentials) (string, error)
	// RecoverGraduateToken returns apperror NotFound when no server-side session exists.
	RecoverGraduateToken(ctx context.Context) (string, error)
	RegisterUser(ctx context.Context, req *UserRegistration) error
	RegisterGraduate(ctx context.Context, req *GraduateRegistration) error
	CheckGraduateDuplicates(ctx context.Context, req DuplicateCheck) error
}

type GraduateGateway interface {
	GetGraduateByUsername(ctx context.Context, token string, username string) (*Graduate, error)
	GetGraduate(ctx context.Context, token string, id int64) (*Graduate, error)
	UpdateGraduate(ctx context.Context, token string, g *Graduate) (*Graduate, error)
	UploadGraduatePicture(ctx context.Context, token string, id int64, file FileUpload) (string, error)
}

type RegistrationUsecase interface {
	RegisterUser(ctx context.Context, req *UserRegistration) (*RegistrationResult, error)
	RegisterGraduate(ctx context.Context, req *GraduateRegistration) (*RegistrationResult, error)
}
