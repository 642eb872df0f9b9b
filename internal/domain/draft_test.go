package domain_test

import (
	"testing"

	"tarabaho-web/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingPortfolio() *domain.PortfolioAggregate {
	return &domain.PortfolioAggregate{
		ID:       5,
		FullName: "Juan Dela Cruz",
		Skills: domain.Collection[domain.Skill]{
			{ID: domain.PersistedID(11), SkillFields: domain.SkillFields{Name: "Masonry", Category: domain.SkillTechnical}},
		},
		CertificateIDs: []int64{100, 101},
	}
}

func existingCertificates() []domain.Certificate {
	return []domain.Certificate{
		{ID: domain.PersistedID(100), CourseName: "SMAW NC II", CertificateNumber: "C-100", IssueDate: "2023-01-10"},
		{ID: domain.PersistedID(101), CourseName: "Carpentry NC II", CertificateNumber: "C-101", IssueDate: "2022-06-01"},
	}
}

func TestNewDraft(t *testing.T) {
	t.Run("create mode fills defaults", func(t *testing.T) {
		d := domain.NewDraft(3, nil, nil)
		assert.Equal(t, domain.DraftEmpty, d.State)
		assert.True(t, d.Creating())
		assert.Equal(t, domain.VisibilityPublic, d.Portfolio.Visibility)
		assert.Equal(t, domain.DefaultTemplate, d.Portfolio.Template)
		assert.NotNil(t, d.Portfolio.Skills)
		assert.NotNil(t, d.Portfolio.References)
		assert.NotEmpty(t, d.Token)
	})

	t.Run("edit mode keeps server data", func(t *testing.T) {
		d := domain.NewDraft(3, existingPortfolio(), existingCertificates())
		assert.Equal(t, domain.DraftEditing, d.State)
		assert.False(t, d.Creating())
		assert.Len(t, d.Certificates, 2)
		assert.Equal(t, int64(3), d.Portfolio.GraduateID)
		assert.NotNil(t, d.Portfolio.Awards)
	})
}

func TestCollectionOperations(t *testing.T) {
	d := domain.NewDraft(3, existingPortfolio(), nil)

	id := d.Portfolio.Skills.Add(domain.Skill{SkillFields: domain.SkillFields{Name: "Welding", Category: domain.SkillTechnical}})
	assert.True(t, id.IsPending())
	assert.Len(t, d.Portfolio.Skills, 2)
	assert.Equal(t, 1, d.Portfolio.Skills.PendingCount())

	require.NoError(t, d.Portfolio.Skills.Replace(id, domain.Skill{SkillFields: domain.SkillFields{Name: "Pipe Welding", Category: domain.SkillTechnical}}))
	got, ok := d.Portfolio.Skills.Find(id)
	require.True(t, ok)
	assert.Equal(t, "Pipe Welding", got.Name)
	assert.Equal(t, id, got.ID)

	assert.True(t, d.Portfolio.Skills.Remove(id))
	assert.False(t, d.Portfolio.Skills.Remove(id))
	assert.Len(t, d.Portfolio.Skills, 1)

	assert.Error(t, d.Portfolio.Skills.Replace(domain.NewPendingID(), domain.Skill{}))
}

func TestReplaceCertificateMarksOnlyRealChanges(t *testing.T) {
	d := domain.NewDraft(3, existingPortfolio(), existingCertificates())
	first := domain.PersistedID(100)

	same, _ := d.FindCertificate(first)
	require.NoError(t, d.ReplaceCertificate(first, same.Certificate, nil))
	got, _ := d.FindCertificate(first)
	assert.False(t, got.Modified, "re-saving identical values is not a change")

	edited := same.Certificate
	edited.IssueDate = "2023-02-10"
	require.NoError(t, d.ReplaceCertificate(first, edited, nil))
	got, _ = d.FindCertificate(first)
	assert.True(t, got.Modified)
	assert.Equal(t, "2023-02-10", got.IssueDate)

	other, _ := d.FindCertificate(domain.PersistedID(101))
	assert.False(t, other.Modified)
}

func TestRemoveCertificate(t *testing.T) {
	d := domain.NewDraft(3, existingPortfolio(), existingCertificates())

	pending, err := d.AddCertificate(domain.Certificate{CourseName: "Electrical NC II", CertificateNumber: "N-1", IssueDate: "2024-01-01"}, nil)
	require.NoError(t, err)

	removed, err := d.RemoveCertificate(pending)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, d.RemovedCertificateIDs, "pending certificates are never deleted remotely")

	removed, err = d.RemoveCertificate(domain.PersistedID(101))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []int64{101}, d.RemovedCertificateIDs)
	assert.Len(t, d.Certificates, 1)
}

func TestSubmitLifecycle(t *testing.T) {
	d := domain.NewDraft(3, existingPortfolio(), existingCertificates())

	require.NoError(t, d.BeginSubmit())
	assert.ErrorIs(t, d.BeginSubmit(), domain.ErrSubmitInProgress)

	_, err := d.AddCertificate(domain.Certificate{}, nil)
	assert.ErrorIs(t, err, domain.ErrSubmitInProgress)

	d.FailSubmit(assert.AnError)
	assert.Equal(t, domain.DraftEditing, d.State)
	assert.Equal(t, assert.AnError.Error(), d.Error)

	require.NoError(t, d.BeginSubmit())
	d.CompleteSubmit(nil)
	assert.Equal(t, domain.DraftSubmitSucceeded, d.State)
	assert.ErrorIs(t, d.BeginSubmit(), domain.ErrDraftNotEditable)
}

func TestNormalizeAssignsPendingIDs(t *testing.T) {
	d := &domain.PortfolioDraft{
		GraduateID: 3,
		Portfolio: domain.PortfolioAggregate{
			Skills: domain.Collection[domain.Skill]{{SkillFields: domain.SkillFields{Name: "Welding"}}},
		},
		Certificates: []domain.DraftCertificate{{Certificate: domain.Certificate{CourseName: "x"}}},
	}
	d.Normalize()

	assert.NotEmpty(t, d.Token)
	assert.Equal(t, domain.DraftEmpty, d.State)
	assert.True(t, d.Portfolio.Skills[0].ID.IsPending())
	assert.True(t, d.Certificates[0].ID.IsPending())
	assert.NotNil(t, d.Portfolio.Experiences)
}
