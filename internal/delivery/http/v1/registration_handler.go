package v1

import (
	"net/http"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationUC domain.RegistrationUsecase
}

func NewRegistrationHandler(limited *gin.RouterGroup, registrationUC domain.RegistrationUsecase) {
	handler := &RegistrationHandler{registrationUC: registrationUC}

	register := limited.Group("/register")
	{
		register.POST("/user", handler.RegisterUser)
		register.POST("/graduate", handler.RegisterGraduate)
	}
}

// RegisterUser godoc
// @Summary      Register a client account
// @Description  Validates the form locally and creates the account. Does not sign in.
// @Tags         register
// @Accept       json
// @Produce      json
// @Param        registration  body      domain.UserRegistration  true  "Sign-up form"
// @Success      201           {object}  response.Response{data=domain.RegistrationResult}
// @Failure      400           {object}  response.Response{error=response.FieldErrors}
// @Router       /register/user [post]
func (h *RegistrationHandler) RegisterUser(c *gin.Context) {
	var req domain.UserRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	res, err := h.registrationUC.RegisterUser(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, res.Message, res)
}

// RegisterGraduate godoc
// @Summary      Register a graduate account
// @Description  Validates the form, checks for duplicate username, email and phone, then creates the account.
// @Tags         register
// @Accept       json
// @Produce      json
// @Param        registration  body      domain.GraduateRegistration  true  "Sign-up form"
// @Success      201           {object}  response.Response{data=domain.RegistrationResult}
// @Failure      400           {object}  response.Response{error=response.FieldErrors}
// @Router       /register/graduate [post]
func (h *RegistrationHandler) RegisterGraduate(c *gin.Context) {
	var req domain.GraduateRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	res, err := h.registrationUC.RegisterGraduate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, res.Message, res)
}
