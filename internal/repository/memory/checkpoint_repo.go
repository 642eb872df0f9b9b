package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"tarabaho-web/internal/domain"
)

// CheckpointRepository keeps save checkpoints in process. The CLI and a web
// server without DATABASE_URL use it.
type CheckpointRepository struct {
	mu          sync.Mutex
	checkpoints map[string]domain.SaveCheckpoint
}

func NewCheckpointRepository() *CheckpointRepository {
	return &CheckpointRepository{checkpoints: make(map[string]domain.SaveCheckpoint)}
}

func (r *CheckpointRepository) Get(_ context.Context, draftToken string) (*domain.SaveCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp, ok := r.checkpoints[draftToken]
	if !ok {
		return nil, nil
	}
	out := clone(cp)
	return &out, nil
}

func (r *CheckpointRepository) Save(_ context.Context, cp *domain.SaveCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp.UpdatedAt = time.Now()
	r.checkpoints[cp.DraftToken] = clone(*cp)
	return nil
}

func (r *CheckpointRepository) Delete(_ context.Context, draftToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkpoints, draftToken)
	return nil
}

func (r *CheckpointRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.checkpoints)
}

func clone(cp domain.SaveCheckpoint) domain.SaveCheckpoint {
	cp.CreatedCertificates = maps.Clone(cp.CreatedCertificates)
	if cp.CreatedCertificates == nil {
		cp.CreatedCertificates = map[string]int64{}
	}
	cp.UpdatedCertificateIDs = slices.Clone(cp.UpdatedCertificateIDs)
	cp.DeletedCertificateIDs = slices.Clone(cp.DeletedCertificateIDs)
	return cp
}
