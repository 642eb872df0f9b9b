package v1

import (
	"net/http"
	"strconv"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type BrowseHandler struct {
	browseUC domain.BrowseUsecase
}

func NewBrowseHandler(public *gin.RouterGroup, browseUC domain.BrowseUsecase) {
	handler := &BrowseHandler{browseUC: browseUC}

	public.GET("/search", handler.Search)
	public.GET("/portfolios/:graduateId", handler.PublicPortfolio)

	profile := public.Group("/profile")
	{
		profile.GET("/me", handler.MyProfile)
		profile.PUT("/me", handler.UpdateProfile)
	}
}

// Search godoc
// @Summary      Search portfolios
// @Tags         browse
// @Produce      json
// @Param        q    query     string  true  "Search text"
// @Success      200  {object}  response.Response{data=domain.SearchOutcome}
// @Failure      400  {object}  response.Response{error=response.FieldErrors}
// @Failure      502  {object}  response.Response
// @Router       /search [get]
func (h *BrowseHandler) Search(c *gin.Context) {
	outcome, err := h.browseUC.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	message := outcome.Message
	if message == "" {
		message = "Search completed"
	}
	response.Success(c, http.StatusOK, message, outcome)
}

// PublicPortfolio godoc
// @Summary      View a graduate's portfolio
// @Tags         browse
// @Produce      json
// @Param        graduateId  path      int  true  "Graduate ID"
// @Success      200         {object}  response.Response{data=domain.PortfolioView}
// @Failure      404         {object}  response.Response
// @Router       /portfolios/{graduateId} [get]
func (h *BrowseHandler) PublicPortfolio(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("graduateId"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid graduate ID"))
		return
	}

	view, err := h.browseUC.PublicPortfolio(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio retrieved", view)
}

// MyProfile godoc
// @Summary      My graduate profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Graduate}
// @Router       /profile/me [get]
func (h *BrowseHandler) MyProfile(c *gin.Context) {
	g, err := h.browseUC.MyProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", g)
}

// UpdateProfile godoc
// @Summary      Update my graduate profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.Graduate  true  "Profile"
// @Success      200      {object}  response.Response{data=domain.Graduate}
// @Failure      400      {object}  response.Response{error=response.FieldErrors}
// @Router       /profile/me [put]
func (h *BrowseHandler) UpdateProfile(c *gin.Context) {
	var req domain.Graduate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	g, err := h.browseUC.UpdateProfile(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", g)
}
