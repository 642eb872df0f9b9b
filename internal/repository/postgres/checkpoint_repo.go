package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tarabaho-web/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const checkpointSchema = `
	CREATE TABLE IF NOT EXISTS portfolio_save_checkpoints (
		draft_token             TEXT PRIMARY KEY,
		graduate_id             BIGINT NOT NULL,
		step                    SMALLINT NOT NULL DEFAULT 0,
		avatar_url              TEXT NOT NULL DEFAULT '',
		created_certificates    JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_certificate_ids BIGINT[] NOT NULL DEFAULT '{}',
		deleted_certificate_ids BIGINT[] NOT NULL DEFAULT '{}',
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type checkpointRepo struct {
	db *pgxpool.Pool
}

func NewCheckpointRepository(db *pgxpool.Pool) domain.CheckpointRepository {
	return &checkpointRepo{db: db}
}

// EnsureCheckpointSchema creates the checkpoint table when it is missing.
func EnsureCheckpointSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, checkpointSchema); err != nil {
		return fmt.Errorf("failed to create checkpoint table: %w", err)
	}
	return nil
}

func (r *checkpointRepo) Get(ctx context.Context, draftToken string) (*domain.SaveCheckpoint, error) {
	query := `
		SELECT draft_token, graduate_id, step, avatar_url, created_certificates,
		       updated_certificate_ids, deleted_certificate_ids, updated_at
		FROM portfolio_save_checkpoints
		WHERE draft_token = $1
	`

	var cp domain.SaveCheckpoint
	var step int16
	var created []byte
	var updated, deleted []int64
	err := r.db.QueryRow(ctx, query, draftToken).Scan(
		&cp.DraftToken, &cp.GraduateID, &step, &cp.AvatarURL, &created,
		pq.Array(&updated), pq.Array(&deleted), &cp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	cp.Step = domain.SaveStep(step)
	cp.CreatedCertificates = map[string]int64{}
	if len(created) > 0 {
		if err := json.Unmarshal(created, &cp.CreatedCertificates); err != nil {
			return nil, fmt.Errorf("failed to decode created certificates: %w", err)
		}
	}
	cp.UpdatedCertificateIDs = updated
	cp.DeletedCertificateIDs = deleted
	return &cp, nil
}

func (r *checkpointRepo) Save(ctx context.Context, cp *domain.SaveCheckpoint) error {
	created := cp.CreatedCertificates
	if created == nil {
		created = map[string]int64{}
	}
	createdJSON, err := json.Marshal(created)
	if err != nil {
		return fmt.Errorf("failed to encode created certificates: %w", err)
	}

	updated := cp.UpdatedCertificateIDs
	if updated == nil {
		updated = []int64{}
	}
	deleted := cp.DeletedCertificateIDs
	if deleted == nil {
		deleted = []int64{}
	}

	cp.UpdatedAt = time.Now()
	query := `
		INSERT INTO portfolio_save_checkpoints (
			draft_token, graduate_id, step, avatar_url, created_certificates,
			updated_certificate_ids, deleted_certificate_ids, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (draft_token) DO UPDATE SET
			step = EXCLUDED.step,
			avatar_url = EXCLUDED.avatar_url,
			created_certificates = EXCLUDED.created_certificates,
			updated_certificate_ids = EXCLUDED.updated_certificate_ids,
			deleted_certificate_ids = EXCLUDED.deleted_certificate_ids,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.Exec(ctx, query,
		cp.DraftToken, cp.GraduateID, int16(cp.Step), cp.AvatarURL, string(createdJSON),
		pq.Array(updated), pq.Array(deleted), cp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

func (r *checkpointRepo) Delete(ctx context.Context, draftToken string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM portfolio_save_checkpoints WHERE draft_token = $1`, draftToken)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}
