package usecase_test

import (
	"context"
	"testing"

	"tarabaho-web/internal/domain"
	"tarabaho-web/internal/usecase"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, role domain.Role, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, role, creds)
	return args.String(0), args.Error(1)
}

func (m *MockAuthGateway) RecoverGraduateToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthGateway) RegisterUser(ctx context.Context, req *domain.UserRegistration) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthGateway) RegisterGraduate(ctx context.Context, req *domain.GraduateRegistration) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthGateway) CheckGraduateDuplicates(ctx context.Context, req domain.DuplicateCheck) error {
	return m.Called(ctx, req).Error(0)
}

func TestLogin(t *testing.T) {
	t.Run("Should store the graduate session and land on the portfolio", func(t *testing.T) {
		h := newHarness(t.Context())
		gw := new(MockAuthGateway)
		creds := domain.Credentials{Username: "grad1", Password: "secret1"}
		gw.On("Login", mock.Anything, domain.RoleGraduate, creds).Return("abc", nil).Once()

		res, err := usecase.NewAuthUsecase(gw).Login(h.ctx, domain.RoleGraduate, creds)
		require.NoError(t, err)
		assert.Equal(t, "/graduate/portfolio", res.Next)

		sess, err := h.manager.Current(h.ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc", sess.Token)
		assert.Equal(t, domain.RoleGraduate, sess.UserType)
		assert.Equal(t, "grad1", sess.Username)
		gw.AssertExpectations(t)
	})

	t.Run("Should land clients on browse", func(t *testing.T) {
		h := newHarness(t.Context())
		gw := new(MockAuthGateway)
		gw.On("Login", mock.Anything, domain.RoleUser, mock.Anything).Return("xyz", nil)

		res, err := usecase.NewAuthUsecase(gw).Login(h.ctx, domain.RoleUser, domain.Credentials{Username: "client", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "/user/browse", res.Next)
	})

	t.Run("Should leave the session untouched on rejection", func(t *testing.T) {
		h := newHarness(t.Context())
		h.loginAs(domain.RoleUser, "previous")
		gw := new(MockAuthGateway)
		gw.On("Login", mock.Anything, domain.RoleGraduate, mock.Anything).Return("", apperror.Unauthorized("Invalid credentials")).Once()

		_, err := usecase.NewAuthUsecase(gw).Login(h.ctx, domain.RoleGraduate, domain.Credentials{Username: "grad1", Password: "wrong"})
		require.Error(t, err)
		assert.Equal(t, "Invalid credentials", err.Error())

		sess, err := h.manager.Current(h.ctx)
		require.NoError(t, err)
		assert.Equal(t, "previous", sess.Username)
		gw.AssertNumberOfCalls(t, "Login", 1)
	})

	t.Run("Should validate before calling the API", func(t *testing.T) {
		h := newHarness(t.Context())
		gw := new(MockAuthGateway)

		_, err := usecase.NewAuthUsecase(gw).Login(h.ctx, domain.RoleGraduate, domain.Credentials{Username: "  "})
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "username")
		assert.Contains(t, appErr.Fields, "password")
		gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject a second login while one is in flight", func(t *testing.T) {
		h := newHarness(t.Context())
		gw := new(MockAuthGateway)
		uc := usecase.NewAuthUsecase(gw)
		release := make(chan struct{})
		entered := make(chan struct{})
		gw.On("Login", mock.Anything, domain.RoleGraduate, mock.Anything).
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return("abc", nil).Once()

		done := make(chan error, 1)
		go func() {
			_, err := uc.Login(h.ctx, domain.RoleGraduate, domain.Credentials{Username: "grad1", Password: "secret1"})
			done <- err
		}()
		<-entered

		_, err := uc.Login(h.ctx, domain.RoleGraduate, domain.Credentials{Username: "grad1", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrSubmitInProgress)

		close(release)
		require.NoError(t, <-done)
		gw.AssertNumberOfCalls(t, "Login", 1)
	})
}

func TestLogoutAndCurrentSession(t *testing.T) {
	h := newHarness(t.Context())
	h.loginAs(domain.RoleGraduate, "grad1")
	uc := usecase.NewAuthUsecase(new(MockAuthGateway))

	sess, err := uc.CurrentSession(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "grad1", sess.Username)

	require.NoError(t, uc.Logout(h.ctx))
	_, err = uc.CurrentSession(h.ctx)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestRecoverToken(t *testing.T) {
	t.Run("Should restore a graduate session", func(t *testing.T) {
		h := newHarness(t.Context())
		gw := new(MockAuthGateway)
		gw.On("RecoverGraduateToken", mock.Anything).Return("recovered", nil)

		ok, err := usecase.NewAuthUsecase(gw).RecoverToken(h.ctx, "grad1")
		require.NoError(t, err)
		assert.True(t, ok)

		token, found, err := h.manager.Token(h.ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "recovered", token)
	})

	t.Run("Should treat a missing server session as absent", func(t *testing.T) {
		h := newHarness(t.Context())
		gw := new(MockAuthGateway)
		gw.On("RecoverGraduateToken", mock.Anything).Return("", apperror.NotFound("No active session"))

		ok, err := usecase.NewAuthUsecase(gw).RecoverToken(h.ctx, "grad1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func validGraduate() *domain.GraduateRegistration {
	return &domain.GraduateRegistration{
		Username:        "grad1",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "Juan",
		LastName:        "Dela Cruz",
		Email:           "juan@example.com",
		Address:         "Cebu City",
		ContactNumber:   "09171234567",
		Birthday:        "1995-06-15",
		HourlyRate:      150,
	}
}

func validUser() *domain.UserRegistration {
	return &domain.UserRegistration{
		Username:        "client1",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "Maria",
		LastName:        "Santos",
		Email:           "maria@example.com",
		Address:         "Manila",
		ContactNumber:   "09181234567",
		Birthday:        "1990-01-01",
	}
}

func TestRegistrationValidation(t *testing.T) {
	blankers := map[string]func(*domain.GraduateRegistration){
		"username":        func(r *domain.GraduateRegistration) { r.Username = "" },
		"password":        func(r *domain.GraduateRegistration) { r.Password = ""; r.ConfirmPassword = "" },
		"confirmPassword": func(r *domain.GraduateRegistration) { r.ConfirmPassword = "" },
		"firstName":       func(r *domain.GraduateRegistration) { r.FirstName = "" },
		"lastName":        func(r *domain.GraduateRegistration) { r.LastName = "" },
		"email":           func(r *domain.GraduateRegistration) { r.Email = "" },
		"address":         func(r *domain.GraduateRegistration) { r.Address = "" },
		"contactNo":       func(r *domain.GraduateRegistration) { r.ContactNumber = "" },
		"birthday":        func(r *domain.GraduateRegistration) { r.Birthday = "" },
		"hourly":          func(r *domain.GraduateRegistration) { r.HourlyRate = 0 },
	}

	for field, blank := range blankers {
		t.Run("Should reject graduate with blank "+field, func(t *testing.T) {
			gw := new(MockAuthGateway)
			uc := usecase.NewRegistrationUsecase(gw, validation.New())
			req := validGraduate()
			blank(req)

			_, err := uc.RegisterGraduate(t.Context(), req)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, field)
			assert.Empty(t, gw.Calls)
		})
	}

	userBlankers := map[string]func(*domain.UserRegistration){
		"username":    func(r *domain.UserRegistration) { r.Username = "   " },
		"firstName":   func(r *domain.UserRegistration) { r.FirstName = "" },
		"email":       func(r *domain.UserRegistration) { r.Email = "" },
		"phoneNumber": func(r *domain.UserRegistration) { r.ContactNumber = "" },
		"birthday":    func(r *domain.UserRegistration) { r.Birthday = "" },
	}
	for field, blank := range userBlankers {
		t.Run("Should reject user with blank "+field, func(t *testing.T) {
			gw := new(MockAuthGateway)
			req := validUser()
			blank(req)

			_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterUser(t.Context(), req)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, field)
			assert.Empty(t, gw.Calls)
		})
	}

	t.Run("Should reject mismatched passwords locally", func(t *testing.T) {
		gw := new(MockAuthGateway)
		req := validUser()
		req.ConfirmPassword = "different"

		_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterUser(t.Context(), req)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Passwords do not match", appErr.Fields["confirmPassword"])
		assert.Empty(t, gw.Calls)
	})

	t.Run("Should reject a short password", func(t *testing.T) {
		gw := new(MockAuthGateway)
		req := validGraduate()
		req.Password, req.ConfirmPassword = "12345", "12345"

		_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterGraduate(t.Context(), req)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "password")
		assert.Empty(t, gw.Calls)
	})
}

func TestRegisterGraduate(t *testing.T) {
	t.Run("Should register after the duplicate check and point to login", func(t *testing.T) {
		gw := new(MockAuthGateway)
		req := validGraduate()
		gw.On("CheckGraduateDuplicates", mock.Anything, domain.DuplicateCheck{Username: "grad1", Email: "juan@example.com", ContactNumber: "09171234567"}).Return(nil).Once()
		gw.On("RegisterGraduate", mock.Anything, req).Return(nil).Once()

		res, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterGraduate(t.Context(), req)
		require.NoError(t, err)
		assert.Equal(t, domain.LoginRoute, res.Next)
		gw.AssertExpectations(t)
	})

	t.Run("Should map duplicate messages to fields", func(t *testing.T) {
		gw := new(MockAuthGateway)
		gw.On("CheckGraduateDuplicates", mock.Anything, mock.Anything).
			Return(apperror.Conflict("Username already exists. Email already exists.")).Once()

		_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterGraduate(t.Context(), validGraduate())
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Username already exists", appErr.Fields["username"])
		assert.Equal(t, "Email already exists", appErr.Fields["email"])
		assert.NotContains(t, appErr.Fields, "contactNo")
		gw.AssertNotCalled(t, "RegisterGraduate", mock.Anything, mock.Anything)
	})

	t.Run("Should prefer the structured field", func(t *testing.T) {
		gw := new(MockAuthGateway)
		rejected := apperror.Conflict("This number is taken")
		rejected.Fields = map[string]string{"phoneNumber": "This number is taken"}
		gw.On("CheckGraduateDuplicates", mock.Anything, mock.Anything).Return(rejected).Once()

		_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterGraduate(t.Context(), validGraduate())
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, map[string]string{"contactNo": "This number is taken"}, appErr.Fields)
	})

	t.Run("Should surface unknown rejections as a general error", func(t *testing.T) {
		gw := new(MockAuthGateway)
		gw.On("CheckGraduateDuplicates", mock.Anything, mock.Anything).Return(apperror.BadRequest("Registration is closed")).Once()

		_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterGraduate(t.Context(), validGraduate())
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Registration is closed", appErr.Fields["general"])
	})

	t.Run("Should pass network failures through", func(t *testing.T) {
		gw := new(MockAuthGateway)
		gw.On("CheckGraduateDuplicates", mock.Anything, mock.Anything).
			Return(apperror.Unavailable("Could not reach the Tarabaho service", assert.AnError)).Once()

		_, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterGraduate(t.Context(), validGraduate())
		assert.Equal(t, 502, apperror.CodeOf(err))
	})
}

func TestRegisterUser(t *testing.T) {
	gw := new(MockAuthGateway)
	req := validUser()
	gw.On("RegisterUser", mock.Anything, req).Return(nil).Once()

	res, err := usecase.NewRegistrationUsecase(gw, validation.New()).RegisterUser(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.LoginRoute, res.Next)
	assert.Contains(t, res.Message, "Registration successful")
	gw.AssertExpectations(t)
}
