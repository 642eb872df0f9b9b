package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"tarabaho-web/internal/domain"
	"tarabaho-web/internal/repository/memory"
	"tarabaho-web/internal/session"
	"tarabaho-web/pkg/apperror"
)

// fakeAPI is an in-memory Tarabaho backend. It records every call as
// "METHOD resource [id]" and assigns ids the way the real API does.
type fakeAPI struct {
	mu         sync.Mutex
	nextID     int64
	graduates  map[string]*domain.Graduate
	portfolios map[int64]*domain.PortfolioAggregate
	certs      map[int64]domain.Certificate
	uploads    []domain.FileUpload
	calls      []string
	failures   map[string]error
}

var (
	_ domain.GraduateGateway    = (*fakeAPI)(nil)
	_ domain.PortfolioGateway   = (*fakeAPI)(nil)
	_ domain.CertificateGateway = (*fakeAPI)(nil)
)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextID: 100,
		graduates: map[string]*domain.Graduate{
			"grad1": {ID: 7, Username: "grad1", FirstName: "Juan", LastName: "Dela Cruz", Email: "juan@example.com", ContactNumber: "09171234567", Address: "Cebu"},
		},
		portfolios: map[int64]*domain.PortfolioAggregate{},
		certs:      map[int64]domain.Certificate{},
		failures:   map[string]error{},
	}
}

// failNext makes the next call whose record starts with prefix fail with err.
func (f *fakeAPI) failNext(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[prefix] = err
}

func (f *fakeAPI) call(format string, args ...any) error {
	c := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, c)
	for prefix, err := range f.failures {
		if strings.HasPrefix(c, prefix) {
			delete(f.failures, prefix)
			return err
		}
	}
	return nil
}

func (f *fakeAPI) id() int64 {
	f.nextID++
	return f.nextID
}

// writes returns the recorded calls that change state.
func (f *fakeAPI) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if !strings.HasPrefix(c, "GET ") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeAPI) addCertificate(graduateID int64, course, number, issued string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.certs[id] = domain.Certificate{ID: domain.PersistedID(id), GraduateID: graduateID, CourseName: course, CertificateNumber: number, IssueDate: issued}
	return id
}

func (f *fakeAPI) GetGraduateByUsername(_ context.Context, _ string, username string) (*domain.Graduate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET graduate %s", username); err != nil {
		return nil, err
	}
	g, ok := f.graduates[username]
	if !ok {
		return nil, apperror.NotFound("Graduate not found")
	}
	out := *g
	return &out, nil
}

func (f *fakeAPI) GetGraduate(_ context.Context, _ string, id int64) (*domain.Graduate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET graduate %d", id); err != nil {
		return nil, err
	}
	for _, g := range f.graduates {
		if g.ID == id {
			out := *g
			return &out, nil
		}
	}
	return nil, apperror.NotFound("Graduate not found")
}

func (f *fakeAPI) UpdateGraduate(_ context.Context, _ string, g *domain.Graduate) (*domain.Graduate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("PUT graduate %d", g.ID); err != nil {
		return nil, err
	}
	stored := *g
	f.graduates[g.Username] = &stored
	out := stored
	return &out, nil
}

func (f *fakeAPI) UploadGraduatePicture(_ context.Context, _ string, id int64, file domain.FileUpload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("POST picture %d", id); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, file)
	return fmt.Sprintf("https://cdn.example.com/%d/%s", id, file.Filename), nil
}

func (f *fakeAPI) ListCertificates(_ context.Context, _ string, graduateID int64) ([]domain.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET certificates %d", graduateID); err != nil {
		return nil, err
	}
	out := []domain.Certificate{}
	for id := int64(0); id <= f.nextID; id++ {
		if c, ok := f.certs[id]; ok && c.GraduateID == graduateID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateCertificate(_ context.Context, _ string, graduateID int64, cert domain.Certificate, _ *domain.FileUpload) (*domain.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("POST certificate"); err != nil {
		return nil, err
	}
	cert.ID = domain.PersistedID(f.id())
	cert.GraduateID = graduateID
	id, _ := cert.ID.ServerID()
	f.certs[id] = cert
	return &cert, nil
}

func (f *fakeAPI) UpdateCertificate(_ context.Context, _ string, cert domain.Certificate, _ *domain.FileUpload) (*domain.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := cert.ID.ServerID()
	if err := f.call("PUT certificate %d", id); err != nil {
		return nil, err
	}
	if _, ok := f.certs[id]; !ok {
		return nil, apperror.NotFound("Certificate not found")
	}
	f.certs[id] = cert
	return &cert, nil
}

func (f *fakeAPI) DeleteCertificate(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DELETE certificate %d", id); err != nil {
		return err
	}
	if _, ok := f.certs[id]; !ok {
		return apperror.NotFound("Certificate not found")
	}
	delete(f.certs, id)
	return nil
}

func (f *fakeAPI) GetPortfolioByGraduate(_ context.Context, _ string, graduateID int64) (*domain.PortfolioAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET portfolio graduate %d", graduateID); err != nil {
		return nil, err
	}
	p, ok := f.portfolios[graduateID]
	if !ok {
		return nil, apperror.NotFound("Portfolio not found")
	}
	return roundTrip(p), nil
}

func (f *fakeAPI) GetPortfolio(_ context.Context, _ string, id int64) (*domain.PortfolioAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET portfolio %d", id); err != nil {
		return nil, err
	}
	for _, p := range f.portfolios {
		if p.ID == id {
			return roundTrip(p), nil
		}
	}
	return nil, apperror.NotFound("Portfolio not found")
}

func (f *fakeAPI) CreatePortfolio(_ context.Context, _ string, graduateID int64, p *domain.PortfolioAggregate) (*domain.PortfolioAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("POST portfolio"); err != nil {
		return nil, err
	}
	if len(p.CertificateIDs) == 0 {
		return nil, apperror.BadRequest("Portfolio must have at least one certificate")
	}
	stored := roundTrip(p)
	stored.ID = f.id()
	stored.GraduateID = graduateID
	f.persistChildren(stored)
	f.portfolios[graduateID] = stored
	return roundTrip(stored), nil
}

func (f *fakeAPI) UpdatePortfolio(_ context.Context, _ string, p *domain.PortfolioAggregate) (*domain.PortfolioAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("PUT portfolio %d", p.ID); err != nil {
		return nil, err
	}
	stored := roundTrip(p)
	f.persistChildren(stored)
	f.portfolios[p.GraduateID] = stored
	return roundTrip(stored), nil
}

func (f *fakeAPI) DeletePortfolio(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DELETE portfolio %d", id); err != nil {
		return err
	}
	for g, p := range f.portfolios {
		if p.ID == id {
			delete(f.portfolios, g)
			return nil
		}
	}
	return apperror.NotFound("Portfolio not found")
}

func (f *fakeAPI) SearchPortfolios(_ context.Context, _ string, query string) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET search %s", query); err != nil {
		return nil, err
	}
	results := []domain.SearchResult{}
	for _, p := range f.portfolios {
		if strings.Contains(strings.ToLower(p.ProfessionalTitle), strings.ToLower(query)) {
			results = append(results, domain.SearchResult{PortfolioID: p.ID, GraduateID: p.GraduateID, FullName: p.FullName, ProfessionalTitle: p.ProfessionalTitle})
		}
	}
	return results, nil
}

func (f *fakeAPI) GetViewStats(_ context.Context, _ string, portfolioID int64) (*domain.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET stats %d", portfolioID); err != nil {
		return nil, err
	}
	return &domain.ViewStats{TotalViews: 12, UniqueViewers: 5, ViewsToday: 1}, nil
}

func (f *fakeAPI) GetViewTrends(_ context.Context, _ string, portfolioID int64, period string) ([]domain.TrendPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GET trends %d %s", portfolioID, period); err != nil {
		return nil, err
	}
	return []domain.TrendPoint{{Date: "2025-03-01", Views: 3}}, nil
}

// persistChildren gives every nested item without a server id a fresh one,
// as the API does when it stores the aggregate.
func (f *fakeAPI) persistChildren(p *domain.PortfolioAggregate) {
	assign := func(id domain.ItemID) domain.ItemID {
		if id.IsPersisted() {
			return id
		}
		return domain.PersistedID(f.id())
	}
	for i := range p.Skills {
		p.Skills[i].ID = assign(p.Skills[i].ID)
	}
	for i := range p.Experiences {
		p.Experiences[i].ID = assign(p.Experiences[i].ID)
	}
	for i := range p.Awards {
		p.Awards[i].ID = assign(p.Awards[i].ID)
	}
	for i := range p.ContinuingEducations {
		p.ContinuingEducations[i].ID = assign(p.ContinuingEducations[i].ID)
	}
	for i := range p.ProfessionalMemberships {
		p.ProfessionalMemberships[i].ID = assign(p.ProfessionalMemberships[i].ID)
	}
	for i := range p.References {
		p.References[i].ID = assign(p.References[i].ID)
	}
}

// roundTrip copies p through JSON the way it would cross the wire.
func roundTrip(p *domain.PortfolioAggregate) *domain.PortfolioAggregate {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out domain.PortfolioAggregate
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	out.Normalize()
	return &out
}

type harness struct {
	api         *fakeAPI
	manager     *session.Manager
	checkpoints *memory.CheckpointRepository
	ctx         context.Context
}

func newHarness(ctx context.Context) *harness {
	h := &harness{
		api:         newFakeAPI(),
		manager:     session.NewManager(session.NewMemoryStore(), "test-client"),
		checkpoints: memory.NewCheckpointRepository(),
	}
	h.ctx = domain.WithSessionManager(ctx, h.manager)
	return h
}

func (h *harness) loginAs(role domain.Role, username string) {
	if err := h.manager.SetSession(h.ctx, "token-"+username, role, username); err != nil {
		panic(err)
	}
}

func itoa(v int64) string {
	return fmt.Sprintf("%d", v)
}
