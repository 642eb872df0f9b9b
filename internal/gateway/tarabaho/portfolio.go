package tarabaho

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tarabaho-web/internal/domain"
)

// The API reads a null child id as "create" and a numeric one as "update";
// children missing from the lists are deleted on its side.
type (
	skillPayload struct {
		ID *int64 `json:"id"`
		domain.SkillFields
	}
	experiencePayload struct {
		ID *int64 `json:"id"`
		domain.ExperienceFields
	}
	awardPayload struct {
		ID *int64 `json:"id"`
		domain.AwardFields
	}
	educationPayload struct {
		ID *int64 `json:"id"`
		domain.ContinuingEducationFields
	}
	membershipPayload struct {
		ID *int64 `json:"id"`
		domain.ProfessionalMembershipFields
	}
	referencePayload struct {
		ID *int64 `json:"id"`
		domain.ReferenceFields
	}
)

type portfolioPayload struct {
	ID                      *int64              `json:"id,omitempty"`
	GraduateID              int64               `json:"graduateId"`
	FullName                string              `json:"fullName"`
	ProfessionalTitle       string              `json:"professionalTitle"`
	ProfessionalSummary     string              `json:"professionalSummary"`
	Email                   string              `json:"email"`
	Phone                   string              `json:"phone"`
	Website                 string              `json:"website"`
	Avatar                  *string             `json:"avatar"`
	Visibility              domain.Visibility   `json:"visibility"`
	Template                string              `json:"designTemplate"`
	Skills                  []skillPayload      `json:"skills"`
	Experiences             []experiencePayload `json:"experiences"`
	Awards                  []awardPayload      `json:"awardsRecognitions"`
	ContinuingEducations    []educationPayload  `json:"continuingEducations"`
	ProfessionalMemberships []membershipPayload `json:"professionalMemberships"`
	References              []referencePayload  `json:"references"`
	CertificateIDs          []int64             `json:"certificateIds"`
}

func mapItems[T, P any](items []T, f func(T) P) []P {
	out := make([]P, 0, len(items))
	for _, item := range items {
		out = append(out, f(item))
	}
	return out
}

func newPortfolioPayload(p *domain.PortfolioAggregate) portfolioPayload {
	payload := portfolioPayload{
		GraduateID:          p.GraduateID,
		FullName:            p.FullName,
		ProfessionalTitle:   p.ProfessionalTitle,
		ProfessionalSummary: p.ProfessionalSummary,
		Email:               p.Email,
		Phone:               p.Phone,
		Website:             p.Website,
		Visibility:          p.Visibility,
		Template:            p.Template,
		CertificateIDs:      p.CertificateIDs,
		Skills: mapItems(p.Skills, func(s domain.Skill) skillPayload {
			return skillPayload{ID: s.ID.Wire(), SkillFields: s.SkillFields}
		}),
		Experiences: mapItems(p.Experiences, func(e domain.Experience) experiencePayload {
			return experiencePayload{ID: e.ID.Wire(), ExperienceFields: e.ExperienceFields}
		}),
		Awards: mapItems(p.Awards, func(a domain.Award) awardPayload {
			return awardPayload{ID: a.ID.Wire(), AwardFields: a.AwardFields}
		}),
		ContinuingEducations: mapItems(p.ContinuingEducations, func(e domain.ContinuingEducation) educationPayload {
			return educationPayload{ID: e.ID.Wire(), ContinuingEducationFields: e.ContinuingEducationFields}
		}),
		ProfessionalMemberships: mapItems(p.ProfessionalMemberships, func(m domain.ProfessionalMembership) membershipPayload {
			return membershipPayload{ID: m.ID.Wire(), ProfessionalMembershipFields: m.ProfessionalMembershipFields}
		}),
		References: mapItems(p.References, func(r domain.Reference) referencePayload {
			return referencePayload{ID: r.ID.Wire(), ReferenceFields: r.ReferenceFields}
		}),
	}
	if p.ID != 0 {
		id := p.ID
		payload.ID = &id
	}
	if p.Avatar != "" {
		avatar := p.Avatar
		payload.Avatar = &avatar
	}
	if payload.CertificateIDs == nil {
		payload.CertificateIDs = []int64{}
	}
	return payload
}

func (c *Client) getPortfolio(ctx context.Context, path, token string) (*domain.PortfolioAggregate, error) {
	var p domain.PortfolioAggregate
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (c *Client) GetPortfolioByGraduate(ctx context.Context, token string, graduateID int64) (*domain.PortfolioAggregate, error) {
	return c.getPortfolio(ctx, fmt.Sprintf("/api/portfolio/graduate/%d/portfolio", graduateID), token)
}

func (c *Client) GetPortfolio(ctx context.Context, token string, id int64) (*domain.PortfolioAggregate, error) {
	return c.getPortfolio(ctx, fmt.Sprintf("/api/portfolio/%d", id), token)
}

func (c *Client) CreatePortfolio(ctx context.Context, token string, graduateID int64, p *domain.PortfolioAggregate) (*domain.PortfolioAggregate, error) {
	var saved domain.PortfolioAggregate
	path := fmt.Sprintf("/api/portfolio/graduate/%d/portfolio", graduateID)
	if err := c.doJSON(ctx, http.MethodPost, path, token, newPortfolioPayload(p), &saved); err != nil {
		return nil, err
	}
	saved.Normalize()
	return &saved, nil
}

func (c *Client) UpdatePortfolio(ctx context.Context, token string, p *domain.PortfolioAggregate) (*domain.PortfolioAggregate, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("tarabaho: cannot update a portfolio without id")
	}
	var saved domain.PortfolioAggregate
	path := fmt.Sprintf("/api/portfolio/%d", p.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, token, newPortfolioPayload(p), &saved); err != nil {
		return nil, err
	}
	saved.Normalize()
	return &saved, nil
}

func (c *Client) DeletePortfolio(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/portfolio/%d", id), token, nil, nil)
}

func (c *Client) SearchPortfolios(ctx context.Context, token string, query string) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	path := "/api/portfolio/search?query=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

func (c *Client) GetViewStats(ctx context.Context, token string, portfolioID int64) (*domain.ViewStats, error) {
	var stats domain.ViewStats
	path := fmt.Sprintf("/api/portfolio-view/stats/%d", portfolioID)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GetViewTrends(ctx context.Context, token string, portfolioID int64, period string) ([]domain.TrendPoint, error) {
	var points []domain.TrendPoint
	path := fmt.Sprintf("/api/portfolio-view/trends/%d?period=%s", portfolioID, url.QueryEscape(period))
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &points); err != nil {
		return nil, err
	}
	if points == nil {
		points = []domain.TrendPoint{}
	}
	return points, nil
}
