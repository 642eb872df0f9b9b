package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/upload"

	"github.com/gin-gonic/gin"
)

// Multipart part names of a save request.
const (
	draftField       = "draft"
	avatarField      = "avatar"
	certificateField = "certificate:"
)

type PortfolioHandler struct {
	portfolioUC domain.PortfolioUsecase
	browseUC    domain.BrowseUsecase
}

func NewPortfolioHandler(public *gin.RouterGroup, uploads *gin.RouterGroup, portfolioUC domain.PortfolioUsecase, browseUC domain.BrowseUsecase) {
	handler := &PortfolioHandler{portfolioUC: portfolioUC, browseUC: browseUC}

	portfolio := public.Group("/portfolio")
	{
		portfolio.GET("/me", handler.Mine)
		portfolio.GET("/edit", handler.Edit)
		portfolio.DELETE("", handler.Delete)
		portfolio.GET("/stats", handler.Stats)
		portfolio.GET("/trends", handler.Trends)
	}

	uploads.POST("/portfolio/save", handler.Save)
}

// Mine godoc
// @Summary      View my portfolio
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.PortfolioView}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /portfolio/me [get]
func (h *PortfolioHandler) Mine(c *gin.Context) {
	view, err := h.browseUC.MyPortfolio(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio retrieved", view)
}

// Edit godoc
// @Summary      Open the portfolio editor
// @Description  Returns a draft in EMPTY, EDITING or LOAD_FAILED state.
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.PortfolioDraft}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /portfolio/edit [get]
func (h *PortfolioHandler) Edit(c *gin.Context) {
	draft, err := h.portfolioUC.OpenEditor(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	message := "Portfolio loaded"
	if draft.State == domain.DraftLoadFailed {
		message = "Could not load your portfolio"
	}
	response.Success(c, http.StatusOK, message, draft)
}

// Save godoc
// @Summary      Save the portfolio draft
// @Description  Sends the whole draft in one batch. Files ride along as multipart parts: "avatar" and "certificate:<id>" for each certificate id in the draft.
// @Tags         portfolio
// @Accept       multipart/form-data
// @Produce      json
// @Param        draft   formData  string  true   "Draft as JSON"
// @Param        avatar  formData  file    false  "New avatar image"
// @Success      200     {object}  response.Response{data=domain.PortfolioDraft}
// @Failure      400     {object}  response.Response{error=response.FieldErrors}
// @Failure      409     {object}  response.Response
// @Router       /portfolio/save [post]
func (h *PortfolioHandler) Save(c *gin.Context) {
	draft, err := bindDraft(c)
	if err != nil {
		c.Error(err)
		return
	}

	creating := draft.Creating()
	if _, err := h.portfolioUC.Save(c.Request.Context(), draft); err != nil {
		c.Error(err)
		return
	}
	message := "Portfolio updated successfully"
	if creating {
		message = "Portfolio created successfully"
	}
	response.Success(c, http.StatusOK, message, draft)
}

// Delete godoc
// @Summary      Delete my portfolio
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /portfolio [delete]
func (h *PortfolioHandler) Delete(c *gin.Context) {
	if err := h.portfolioUC.Delete(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio deleted", nil)
}

// Stats godoc
// @Summary      Portfolio view statistics
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ViewStats}
// @Router       /portfolio/stats [get]
func (h *PortfolioHandler) Stats(c *gin.Context) {
	stats, err := h.browseUC.ViewStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "View statistics retrieved", stats)
}

// Trends godoc
// @Summary      Portfolio view trends
// @Tags         portfolio
// @Produce      json
// @Param        period  query     string  false  "week, month or year"
// @Success      200     {object}  response.Response{data=[]domain.TrendPoint}
// @Router       /portfolio/trends [get]
func (h *PortfolioHandler) Trends(c *gin.Context) {
	points, err := h.browseUC.ViewTrends(c.Request.Context(), c.Query("period"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "View trends retrieved", points)
}

// bindDraft reads a save request. A JSON body carries the draft alone; a
// multipart body adds the picked files.
func bindDraft(c *gin.Context) (*domain.PortfolioDraft, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var draft domain.PortfolioDraft
		if err := c.ShouldBindJSON(&draft); err != nil {
			return nil, apperror.BadRequest(err.Error())
		}
		return &draft, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.BadRequest("Invalid upload: " + err.Error())
	}
	raw := form.Value[draftField]
	if len(raw) == 0 {
		return nil, apperror.BadRequest("Missing draft")
	}
	var draft domain.PortfolioDraft
	if err := json.Unmarshal([]byte(raw[0]), &draft); err != nil {
		return nil, apperror.BadRequest("Invalid draft: " + err.Error())
	}
	draft.Normalize()

	if err := attachFiles(&draft, form.File); err != nil {
		return nil, err
	}
	return &draft, nil
}

func attachFiles(draft *domain.PortfolioDraft, files map[string][]*multipart.FileHeader) error {
	for field, headers := range files {
		if len(headers) == 0 {
			continue
		}
		file, err := readUpload(headers[0])
		if err != nil {
			return err
		}

		switch {
		case field == avatarField:
			if err := draft.SetAvatar(*file); err != nil {
				return apperror.New(http.StatusConflict, err.Error(), err)
			}
		case strings.HasPrefix(field, certificateField):
			id, err := domain.ParseItemID(strings.TrimPrefix(field, certificateField))
			if err != nil {
				return apperror.BadRequest(fmt.Sprintf("Unknown file part %q", field))
			}
			current, ok := draft.FindCertificate(id)
			if !ok {
				return apperror.BadRequest(fmt.Sprintf("No certificate %s in the draft", id))
			}
			if err := draft.ReplaceCertificate(id, current.Certificate, file); err != nil {
				return apperror.New(http.StatusConflict, err.Error(), err)
			}
		default:
			return apperror.BadRequest(fmt.Sprintf("Unknown file part %q", field))
		}
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) (*domain.FileUpload, error) {
	if fh.Size > upload.MaxFileSize {
		return nil, apperror.BadRequest(fmt.Sprintf("%s is too large", fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.BadRequest("Could not read " + fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, upload.MaxFileSize+1))
	if err != nil {
		return nil, apperror.BadRequest("Could not read " + fh.Filename)
	}
	if len(data) > upload.MaxFileSize {
		return nil, apperror.BadRequest(fmt.Sprintf("%s is too large", fh.Filename))
	}
	return &domain.FileUpload{Filename: fh.Filename, Data: data}, nil
}
