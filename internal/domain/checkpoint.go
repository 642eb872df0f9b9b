package domain

import (
	"context"
	"time"
)

type SaveStep int

const (
	StepNone SaveStep = iota
	StepAvatar
	StepCertificates
	StepDeletions
	StepPortfolio
)

// SaveCheckpoint records what a portfolio save already did on the server, so
// that retrying the same draft does not repeat finished work.
type SaveCheckpoint struct {
	DraftToken string   `json:"draftToken"`
	GraduateID int64    `json:"graduateId"`
	Step       SaveStep `json:"step"`
	AvatarURL  string   `json:"avatarUrl,omitempty"`
	// CreatedCertificates maps pending certificate ids to the ids the API assigned.
	CreatedCertificates   map[string]int64 `json:"createdCertificates"`
	UpdatedCertificateIDs []int64          `json:"updatedCertificateIds"`
	DeletedCertificateIDs []int64          `json:"deletedCertificateIds"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

func NewSaveCheckpoint(draftToken string, graduateID int64) *SaveCheckpoint {
	return &SaveCheckpoint{
		DraftToken:          draftToken,
		GraduateID:          graduateID,
		CreatedCertificates: map[string]int64{},
	}
}

func (c *SaveCheckpoint) Updated(id int64) bool {
	return containsID(c.UpdatedCertificateIDs, id)
}

func (c *SaveCheckpoint) Deleted(id int64) bool {
	return containsID(c.DeletedCertificateIDs, id)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CheckpointRepository stores save checkpoints. Get returns (nil, nil) when
// no checkpoint exists for the token.
type CheckpointRepository interface {
	Get(ctx context.Context, draftToken string) (*SaveCheckpoint, error)
	Save(ctx context.Context, cp *SaveCheckpoint) error
	Delete(ctx context.Context, draftToken string) error
}
