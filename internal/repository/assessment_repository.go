package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bilanpro/internal/database"
	"bilanpro/internal/domain/assessment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAssessmentNotFound = errors.New("assessment not found")

type AssessmentRepository interface {
	Create(ctx context.Context, a assessment.Assessment) error
	FindByID(ctx context.Context, id uuid.UUID) (assessment.Assessment, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID) ([]assessment.Assessment, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStep, progressPct int, status assessment.Status) error
	MarkSubmitted(ctx context.Context, id uuid.UUID) (time.Time, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status assessment.Status) error
	AssignReviewer(ctx context.Context, id, consultantID uuid.UUID) error
}

type PostgresAssessmentRepository struct {
	db database.DB
}

func NewPostgresAssessmentRepository(db database.DB) *PostgresAssessmentRepository {
	return &PostgresAssessmentRepository{db: db}
}

const assessmentColumns = `id, beneficiary_id, consultant_id, title, COALESCE(description, ''),
	 assessment_type, status, current_step, progress_percentage, submitted_at, created_at, updated_at`

func (r *PostgresAssessmentRepository) Create(ctx context.Context, a assessment.Assessment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO assessments (id, beneficiary_id, consultant_id, title, description,
		  assessment_type, status, current_step, progress_percentage)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)`,
		a.ID, a.BeneficiaryID, a.ConsultantID, a.Title, a.Description,
		a.Type, a.Status, a.CurrentStep, a.ProgressPercentage,
	)
	return err
}

func (r *PostgresAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (assessment.Assessment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`,
		id,
	)
	return scanAssessment(row)
}

func (r *PostgresAssessmentRepository) ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID) ([]assessment.Assessment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assessmentColumns+`
		 FROM assessments
		 WHERE beneficiary_id = $1
		 ORDER BY created_at DESC`,
		beneficiaryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]assessment.Assessment, 0)
	for rows.Next() {
		a, err := scanAssessmentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAssessmentRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep, progressPct int, status assessment.Status) error {
	rowsAffected, err := r.db.Exec(ctx,
		`UPDATE assessments
		 SET current_step = $1, progress_percentage = $2, status = $3, updated_at = NOW()
		 WHERE id = $4`,
		currentStep, progressPct, status, id,
	)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAssessmentNotFound
	}
	return nil
}

func (r *PostgresAssessmentRepository) MarkSubmitted(ctx context.Context, id uuid.UUID) (time.Time, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE assessments
		 SET status = $1, submitted_at = NOW(), progress_percentage = 100, updated_at = NOW()
		 WHERE id = $2
		 RETURNING submitted_at`,
		assessment.StatusSubmitted, id,
	)

	var submittedAt time.Time
	if err := row.Scan(&submittedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrAssessmentNotFound
		}
		return time.Time{}, err
	}
	return submittedAt, nil
}

func (r *PostgresAssessmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status assessment.Status) error {
	rowsAffected, err := r.db.Exec(ctx,
		`UPDATE assessments SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAssessmentNotFound
	}
	return nil
}

func (r *PostgresAssessmentRepository) AssignReviewer(ctx context.Context, id, consultantID uuid.UUID) error {
	rowsAffected, err := r.db.Exec(ctx,
		`UPDATE assessments
		 SET consultant_id = $1, status = $2, updated_at = NOW()
		 WHERE id = $3`,
		consultantID, assessment.StatusUnderReview, id,
	)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAssessmentNotFound
	}
	return nil
}

func scanAssessment(row database.Row) (assessment.Assessment, error) {
	var a assessment.Assessment
	if err := row.Scan(
		&a.ID, &a.BeneficiaryID, &a.ConsultantID, &a.Title, &a.Description,
		&a.Type, &a.Status, &a.CurrentStep, &a.ProgressPercentage,
		&a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return assessment.Assessment{}, ErrAssessmentNotFound
		}
		return assessment.Assessment{}, err
	}
	return a, nil
}

func scanAssessmentRows(rows database.Rows) (assessment.Assessment, error) {
	var a assessment.Assessment
	err := rows.Scan(
		&a.ID, &a.BeneficiaryID, &a.ConsultantID, &a.Title, &a.Description,
		&a.Type, &a.Status, &a.CurrentStep, &a.ProgressPercentage,
		&a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return assessment.Assessment{}, err
	}
	return a, nil
}
