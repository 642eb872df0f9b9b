package usecase

import (
	"context"
	"net/http"
	"strings"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/validation"

	"github.com/go-playground/validator/v10"
)

var trendPeriods = map[string]bool{"week": true, "month": true, "year": true}

type browseUsecase struct {
	graduates    domain.GraduateGateway
	portfolios   domain.PortfolioGateway
	certificates domain.CertificateGateway
	validate     *validator.Validate
}

func NewBrowseUsecase(graduates domain.GraduateGateway, portfolios domain.PortfolioGateway, certificates domain.CertificateGateway, validate *validator.Validate) domain.BrowseUsecase {
	return &browseUsecase{
		graduates:    graduates,
		portfolios:   portfolios,
		certificates: certificates,
		validate:     validate,
	}
}

// Search rejects an empty query without calling the API. An empty result set
// is a normal outcome with a message; a failed call is an error.
func (u *browseUsecase) Search(ctx context.Context, query string) (*domain.SearchOutcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Please enter a search term", map[string]string{"query": "Search term is required"})
	}

	m, sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	results, err := u.portfolios.SearchPortfolios(ctx, sess.Token, query)
	if err != nil {
		if apperror.IsUnauthorized(err) {
			return nil, dropOnUnauthorized(ctx, m, err)
		}
		code := apperror.CodeOf(err)
		if code == 0 {
			code = http.StatusBadGateway
		}
		return nil, apperror.New(code, "Could not search portfolios: "+err.Error(), err)
	}

	outcome := &domain.SearchOutcome{Query: query, Results: results}
	if len(results) == 0 {
		outcome.Message = "No portfolios match \"" + query + "\""
	}
	return outcome, nil
}

func (u *browseUsecase) MyPortfolio(ctx context.Context) (*domain.PortfolioView, error) {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return nil, err
	}
	grad, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}

	view, err := u.portfolioView(ctx, sess.Token, grad)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	if view.Exists {
		if err := m.SetPortfolioID(ctx, view.Portfolio.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (u *browseUsecase) PublicPortfolio(ctx context.Context, graduateID int64) (*domain.PortfolioView, error) {
	if graduateID <= 0 {
		return nil, apperror.BadRequest("Invalid graduate id")
	}
	m, sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	grad, err := u.graduates.GetGraduate(ctx, sess.Token, graduateID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("Graduate not found")
		}
		return nil, dropOnUnauthorized(ctx, m, err)
	}

	view, err := u.portfolioView(ctx, sess.Token, grad)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	return view, nil
}

// portfolioView treats a missing portfolio as "not created yet".
func (u *browseUsecase) portfolioView(ctx context.Context, token string, grad *domain.Graduate) (*domain.PortfolioView, error) {
	view := &domain.PortfolioView{Graduate: grad, Certificates: []domain.Certificate{}}

	p, err := u.portfolios.GetPortfolioByGraduate(ctx, token, grad.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return view, nil
		}
		return nil, err
	}
	view.Exists = true
	view.Portfolio = p

	certs, err := u.certificates.ListCertificates(ctx, token, grad.ID)
	if err != nil {
		return nil, err
	}
	view.Certificates = certs
	return view, nil
}

func (u *browseUsecase) MyProfile(ctx context.Context) (*domain.Graduate, error) {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return nil, err
	}
	grad, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	return grad, nil
}

// UpdateProfile saves the signed-in graduate's own profile. The id and
// username always come from the session.
func (u *browseUsecase) UpdateProfile(ctx context.Context, g *domain.Graduate) (*domain.Graduate, error) {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.validate.Struct(g); err != nil {
		return nil, apperror.Validation("Please fix the highlighted fields", validation.FieldErrors(err))
	}

	current, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	g.ID = current.ID
	g.Username = current.Username
	if g.ProfilePicture == "" {
		g.ProfilePicture = current.ProfilePicture
	}

	updated, err := u.graduates.UpdateGraduate(ctx, sess.Token, g)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	return updated, nil
}

func (u *browseUsecase) ViewStats(ctx context.Context) (*domain.ViewStats, error) {
	m, sess, portfolioID, err := u.ownPortfolioID(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := u.portfolios.GetViewStats(ctx, sess.Token, portfolioID)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	return stats, nil
}

func (u *browseUsecase) ViewTrends(ctx context.Context, period string) ([]domain.TrendPoint, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = "week"
	}
	if !trendPeriods[period] {
		return nil, apperror.Validation("Unknown period", map[string]string{"period": "Period must be week, month or year"})
	}

	m, sess, portfolioID, err := u.ownPortfolioID(ctx)
	if err != nil {
		return nil, err
	}
	points, err := u.portfolios.GetViewTrends(ctx, sess.Token, portfolioID, period)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	return points, nil
}

// ownPortfolioID prefers the id remembered in the session and looks it up
// otherwise.
func (u *browseUsecase) ownPortfolioID(ctx context.Context) (domain.SessionManager, *domain.Session, int64, error) {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	if sess.PortfolioID > 0 {
		return m, sess, sess.PortfolioID, nil
	}

	grad, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		return nil, nil, 0, dropOnUnauthorized(ctx, m, err)
	}
	p, err := u.portfolios.GetPortfolioByGraduate(ctx, sess.Token, grad.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, 0, apperror.NotFound("Create a portfolio to see its statistics")
		}
		return nil, nil, 0, dropOnUnauthorized(ctx, m, err)
	}
	if err := m.SetPortfolioID(ctx, p.ID); err != nil {
		return nil, nil, 0, err
	}
	return m, sess, p.ID, nil
}
