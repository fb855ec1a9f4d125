package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bilanpro/internal/database"
	"bilanpro/internal/domain/wizard"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is the scratch copy of wizard input for one assessment. There is at
// most one row per assessment; Save upserts on assessment_id. CurrentStep
// records the step the user last touched, so the wizard can reopen there.
type Draft struct {
	ID           uuid.UUID
	AssessmentID uuid.UUID
	Data         wizard.DraftData
	CurrentStep  int
	LastSavedAt  time.Time
	CreatedAt    time.Time
}

type DraftRepository interface {
	Create(ctx context.Context, assessmentID uuid.UUID, data wizard.DraftData) (Draft, error)
	FindByAssessmentID(ctx context.Context, assessmentID uuid.UUID) (Draft, error)
	Save(ctx context.Context, assessmentID uuid.UUID, step int, data wizard.DraftData) (Draft, error)
	DeleteByAssessmentID(ctx context.Context, assessmentID uuid.UUID) error
}

type PostgresDraftRepository struct {
	db database.DB
}

func NewPostgresDraftRepository(db database.DB) *PostgresDraftRepository {
	return &PostgresDraftRepository{db: db}
}

func (r *PostgresDraftRepository) Create(ctx context.Context, assessmentID uuid.UUID, data wizard.DraftData) (Draft, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Draft{}, fmt.Errorf("encode draft data: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO assessment_drafts (id, assessment_id, draft_data)
		 VALUES ($1, $2, $3)
		 RETURNING id, assessment_id, draft_data, current_step_number, last_saved_at, created_at`,
		uuid.New(), assessmentID, raw,
	)
	return scanDraft(row)
}

func (r *PostgresDraftRepository) FindByAssessmentID(ctx context.Context, assessmentID uuid.UUID) (Draft, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, assessment_id, draft_data, current_step_number, last_saved_at, created_at
		 FROM assessment_drafts
		 WHERE assessment_id = $1`,
		assessmentID,
	)
	return scanDraft(row)
}

func (r *PostgresDraftRepository) Save(ctx context.Context, assessmentID uuid.UUID, step int, data wizard.DraftData) (Draft, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Draft{}, fmt.Errorf("encode draft data: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO assessment_drafts (id, assessment_id, draft_data, current_step_number)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (assessment_id)
		 DO UPDATE SET draft_data = EXCLUDED.draft_data,
		               current_step_number = EXCLUDED.current_step_number,
		               last_saved_at = NOW()
		 RETURNING id, assessment_id, draft_data, current_step_number, last_saved_at, created_at`,
		uuid.New(), assessmentID, raw, step,
	)
	return scanDraft(row)
}

func (r *PostgresDraftRepository) DeleteByAssessmentID(ctx context.Context, assessmentID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM assessment_drafts WHERE assessment_id = $1`,
		assessmentID,
	)
	return err
}

func scanDraft(row database.Row) (Draft, error) {
	var (
		d   Draft
		raw []byte
	)
	if err := row.Scan(&d.ID, &d.AssessmentID, &raw, &d.CurrentStep, &d.LastSavedAt, &d.CreatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Draft{}, ErrDraftNotFound
		}
		return Draft{}, err
	}
	if err := json.Unmarshal(raw, &d.Data); err != nil {
		return Draft{}, fmt.Errorf("decode draft data: %w", err)
	}
	return d, nil
}
