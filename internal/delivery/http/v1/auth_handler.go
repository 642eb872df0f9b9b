package v1

import (
	"net/http"
	"strconv"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC  domain.AuthUsecase
	tracker *security.LoginTracker
}

// NewAuthHandler registers the auth routes. Token recovery reads the API's
// session cookie from the shared client, so it is only offered when that
// client serves a single user.
func NewAuthHandler(public *gin.RouterGroup, limited *gin.RouterGroup, authUC domain.AuthUsecase, tracker *security.LoginTracker, enableRecover bool) {
	handler := &AuthHandler{authUC: authUC, tracker: tracker}

	limitedAuth := limited.Group("/auth")
	{
		limitedAuth.POST("/login", handler.Login)
		if enableRecover {
			limitedAuth.POST("/recover", handler.Recover)
		}
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/logout", handler.Logout)
		publicAuth.GET("/me", handler.Me)
	}
}

type LoginRequest struct {
	Role     domain.Role `json:"role" binding:"required,oneof=user graduate"`
	Username string      `json:"username" binding:"required"`
	Password string      `json:"password" binding:"required"`
}

type RecoverRequest struct {
	Username string `json:"username" binding:"required"`
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a Tarabaho token and binds it to the browser session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=domain.LoginResult}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	account := string(req.Role) + ":" + req.Username
	ip := c.ClientIP()

	if h.tracker != nil {
		blocked, err := h.tracker.IsBlocked(ctx, account, ip)
		if err != nil {
			logger.Log.Warn("Login tracker unavailable", "error", err)
		}
		if blocked {
			c.Header("Retry-After", strconv.Itoa(int(h.tracker.BlockDuration().Seconds())))
			c.Error(apperror.New(http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil))
			return
		}
	}

	res, err := h.authUC.Login(ctx, req.Role, domain.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		if code := apperror.CodeOf(err); h.tracker != nil && (code == http.StatusUnauthorized || code == http.StatusForbidden) {
			if _, _, trackErr := h.tracker.RecordFailedAttempt(ctx, account, ip); trackErr != nil {
				logger.Log.Warn("Failed to record login attempt", "error", trackErr)
			}
		}
		c.Error(err)
		return
	}
	if h.tracker != nil {
		_ = h.tracker.ClearAttempts(ctx, account)
	}
	response.Success(c, http.StatusOK, "Login successful", res)
}

// Logout godoc
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUC.Logout(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Logged out", gin.H{"next": domain.LoginRoute})
}

// Me godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=SessionInfo}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, err := h.authUC.CurrentSession(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Session active", newSessionInfo(sess))
}

// Recover godoc
// @Summary      Recover a graduate session
// @Description  Restores the token from the Tarabaho API's own session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        recover  body      RecoverRequest  true  "Username"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/recover [post]
func (h *AuthHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	ok, err := h.authUC.RecoverToken(c.Request.Context(), req.Username)
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		c.Error(apperror.NotFound("No active session to recover"))
		return
	}
	response.Success(c, http.StatusOK, "Session recovered", gin.H{"next": domain.RoleGraduate.LandingRoute()})
}

// SessionInfo is the session as shown to the browser. The token never leaves
// the server.
type SessionInfo struct {
	Username    string      `json:"username"`
	UserType    domain.Role `json:"userType"`
	IsLoggedIn  bool        `json:"isLoggedIn"`
	PortfolioID int64       `json:"portfolioId,omitempty"`
}

func newSessionInfo(s *domain.Session) SessionInfo {
	return SessionInfo{
		Username:    s.Username,
		UserType:    s.UserType,
		IsLoggedIn:  s.LoggedIn(),
		PortfolioID: s.PortfolioID,
	}
}
