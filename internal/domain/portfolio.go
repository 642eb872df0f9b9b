package domain

import (
	"context"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

const DefaultTemplate = "default"

type SkillCategory string

const (
	SkillTechnical        SkillCategory = "TECHNICAL"
	SkillLanguage         SkillCategory = "LANGUAGE"
	SkillDigital          SkillCategory = "DIGITAL"
	SkillSoft             SkillCategory = "SOFT"
	SkillIndustrySpecific SkillCategory = "INDUSTRY_SPECIFIC"
)

type SkillFields struct {
	Name        string        `json:"name" yaml:"name" validate:"required,max=100"`
	Category    SkillCategory `json:"type" yaml:"type" validate:"required,oneof=TECHNICAL LANGUAGE DIGITAL SOFT INDUSTRY_SPECIFIC"`
	Proficiency string        `json:"proficiencyLevel,omitempty" yaml:"proficiency,omitempty"`
}

type Skill struct {
	ID ItemID `json:"id"`
	SkillFields
}

func (s Skill) ItemID() ItemID         { return s.ID }
func (s Skill) WithID(id ItemID) Skill { s.ID = id; return s }

type ExperienceFields struct {
	JobTitle    string `json:"jobTitle" yaml:"jobTitle" validate:"required"`
	Employer    string `json:"employer" yaml:"employer" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty" yaml:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"endDate,omitempty" yaml:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type Experience struct {
	ID ItemID `json:"id"`
	ExperienceFields
}

func (e Experience) ItemID() ItemID              { return e.ID }
func (e Experience) WithID(id ItemID) Experience { e.ID = id; return e }

type AwardFields struct {
	Title        string `json:"title" yaml:"title" validate:"required"`
	Issuer       string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	DateReceived string `json:"dateReceived,omitempty" yaml:"dateReceived,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type Award struct {
	ID ItemID `json:"id"`
	AwardFields
}

func (a Award) ItemID() ItemID         { return a.ID }
func (a Award) WithID(id ItemID) Award { a.ID = id; return a }

type ContinuingEducationFields struct {
	CourseName     string `json:"courseName" yaml:"courseName" validate:"required"`
	Institution    string `json:"institution,omitempty" yaml:"institution,omitempty"`
	CompletionDate string `json:"completionDate,omitempty" yaml:"completionDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ContinuingEducation struct {
	ID ItemID `json:"id"`
	ContinuingEducationFields
}

func (e ContinuingEducation) ItemID() ItemID { return e.ID }
func (e ContinuingEducation) WithID(id ItemID) ContinuingEducation {
	e.ID = id
	return e
}

type ProfessionalMembershipFields struct {
	Organization   string `json:"organization" yaml:"organization" validate:"required"`
	MembershipType string `json:"membershipType,omitempty" yaml:"membershipType,omitempty"`
	StartDate      string `json:"startDate,omitempty" yaml:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ProfessionalMembership struct {
	ID ItemID `json:"id"`
	ProfessionalMembershipFields
}

func (m ProfessionalMembership) ItemID() ItemID { return m.ID }
func (m ProfessionalMembership) WithID(id ItemID) ProfessionalMembership {
	m.ID = id
	return m
}

type ReferenceFields struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	Relationship string `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Company      string `json:"company,omitempty" yaml:"company,omitempty"`
	Contact      string `json:"phone,omitempty" yaml:"contact,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
}

type Reference struct {
	ID ItemID `json:"id"`
	ReferenceFields
}

func (r Reference) ItemID() ItemID             { return r.ID }
func (r Reference) WithID(id ItemID) Reference { r.ID = id; return r }

// PortfolioAggregate is a graduate's portfolio with its owned collections.
// ID is zero until the API stores it.
type PortfolioAggregate struct {
	ID                  int64      `json:"id,omitempty"`
	GraduateID          int64      `json:"graduateId,omitempty"`
	FullName            string     `json:"fullName" validate:"max=150"`
	ProfessionalTitle   string     `json:"professionalTitle" validate:"max=150"`
	ProfessionalSummary string     `json:"professionalSummary" validate:"max=2000"`
	Email               string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone               string     `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Website             string     `json:"website,omitempty" validate:"omitempty,url"`
	Avatar              string     `json:"avatar,omitempty"`
	Visibility          Visibility `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	Template            string     `json:"designTemplate"`

	Skills                  Collection[Skill]                  `json:"skills" validate:"dive"`
	Experiences             Collection[Experience]             `json:"experiences" validate:"dive"`
	Awards                  Collection[Award]                  `json:"awardsRecognitions" validate:"dive"`
	ContinuingEducations    Collection[ContinuingEducation]    `json:"continuingEducations" validate:"dive"`
	ProfessionalMemberships Collection[ProfessionalMembership] `json:"professionalMemberships" validate:"dive"`
	References              Collection[Reference]              `json:"references" validate:"dive"`

	CertificateIDs []int64   `json:"certificateIds"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// Normalize fills defaults and makes every collection non-nil with ids set.
func (p *PortfolioAggregate) Normalize() {
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	if p.Template == "" {
		p.Template = DefaultTemplate
	}
	p.Skills.normalize()
	p.Experiences.normalize()
	p.Awards.normalize()
	p.ContinuingEducations.normalize()
	p.ProfessionalMemberships.normalize()
	p.References.normalize()
	if p.CertificateIDs == nil {
		p.CertificateIDs = []int64{}
	}
}

// PortfolioGateway is the portfolio part of the Tarabaho API.
type PortfolioGateway interface {
	// GetPortfolioByGraduate returns an apperror NotFound when the graduate has none.
	GetPortfolioByGraduate(ctx context.Context, token string, graduateID int64) (*PortfolioAggregate, error)
	GetPortfolio(ctx context.Context, token string, id int64) (*PortfolioAggregate, error)
	CreatePortfolio(ctx context.Context, token string, graduateID int64, p *PortfolioAggregate) (*PortfolioAggregate, error)
	UpdatePortfolio(ctx context.Context, token string, p *PortfolioAggregate) (*PortfolioAggregate, error)
	DeletePortfolio(ctx context.Context, token string, id int64) error
	SearchPortfolios(ctx context.Context, token string, query string) ([]SearchResult, error)
	GetViewStats(ctx context.Context, token string, portfolioID int64) (*ViewStats, error)
	GetViewTrends(ctx context.Context, token string, portfolioID int64, period string) ([]TrendPoint, error)
}

// PortfolioUsecase drives the editor: load a draft, then save it in one batch.
type PortfolioUsecase interface {
	OpenEditor(ctx context.Context) (*PortfolioDraft, error)
	Save(ctx context.Context, draft *PortfolioDraft) (*PortfolioAggregate, error)
	Delete(ctx context.Context) error
}
