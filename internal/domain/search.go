package domain

import "context"

// SearchResult is one portfolio hit from the search endpoint.
type SearchResult struct {
	PortfolioID         int64         `json:"id"`
	GraduateID          int64         `json:"graduateId"`
	FullName            string        `json:"fullName"`
	ProfessionalTitle   string        `json:"professionalTitle"`
	ProfessionalSummary string        `json:"professionalSummary"`
	Avatar              string        `json:"avatar,omitempty"`
	Skills              []SkillFields `json:"skills,omitempty"`
}

// SearchOutcome separates "no matches" from a failed search.
type SearchOutcome struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Message string         `json:"message,omitempty"`
}

type ViewStats struct {
	TotalViews     int64 `json:"totalViews"`
	UniqueViewers  int64 `json:"uniqueViewers"`
	ViewsToday     int64 `json:"viewsToday"`
	ViewsThisWeek  int64 `json:"viewsThisWeek"`
	ViewsThisMonth int64 `json:"viewsThisMonth"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// PortfolioView is what the view screens render. Exists is false when the
// graduate has not created a portfolio yet.
type PortfolioView struct {
	Graduate     *Graduate           `json:"graduate"`
	Exists       bool                `json:"exists"`
	Portfolio    *PortfolioAggregate `json:"portfolio,omitempty"`
	Certificates []Certificate       `json:"certificates"`
}

type BrowseUsecase interface {
	Search(ctx context.Context, query string) (*SearchOutcome, error)
	MyPortfolio(ctx context.Context) (*PortfolioView, error)
	PublicPortfolio(ctx context.Context, graduateID int64) (*PortfolioView, error)
	MyProfile(ctx context.Context) (*Graduate, error)
	UpdateProfile(ctx context.Context, g *Graduate) (*Graduate, error)
	ViewStats(ctx context.Context) (*ViewStats, error)
	ViewTrends(ctx context.Context, period string) ([]TrendPoint, error)
}
