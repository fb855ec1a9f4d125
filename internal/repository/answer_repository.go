package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bilanpro/internal/database"
	"bilanpro/internal/domain/wizard"

	"github.com/google/uuid"
)

// Answer is one validated wizard field, keyed by (assessment_id, question_id).
// Re-saving a step overwrites the previous value for the same question.
type Answer struct {
	ID           uuid.UUID
	AssessmentID uuid.UUID
	StepNumber   int
	Section      string
	QuestionID   string
	Value        wizard.AnswerValue
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AnswerRepository interface {
	// UpsertMany writes all answers for one step in a single transaction,
	// so a re-saved step is never observed half-written.
	UpsertMany(ctx context.Context, assessmentID uuid.UUID, step int, answers map[string]wizard.AnswerValue) error
	StepHasAnswers(ctx context.Context, assessmentID uuid.UUID, step int) (bool, error)
	ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]Answer, error)
}

type PostgresAnswerRepository struct {
	db database.DB
}

func NewPostgresAnswerRepository(db database.DB) *PostgresAnswerRepository {
	return &PostgresAnswerRepository{db: db}
}

func (r *PostgresAnswerRepository) UpsertMany(ctx context.Context, assessmentID uuid.UUID, step int, answers map[string]wizard.AnswerValue) error {
	if len(answers) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	section := wizard.Step(step).Section()
	for questionID, value := range answers {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode answer %q: %w", questionID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO assessment_answers (id, assessment_id, step_number, section, question_id, answer_value)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (assessment_id, question_id)
			 DO UPDATE SET step_number = EXCLUDED.step_number,
			               section = EXCLUDED.section,
			               answer_value = EXCLUDED.answer_value,
			               updated_at = NOW()`,
			uuid.New(), assessmentID, step, section, questionID, raw,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresAnswerRepository) StepHasAnswers(ctx context.Context, assessmentID uuid.UUID, step int) (bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM assessment_answers
		   WHERE assessment_id = $1 AND step_number = $2
		 )`,
		assessmentID, step,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresAnswerRepository) ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]Answer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, assessment_id, step_number, section, question_id, answer_value, created_at, updated_at
		 FROM assessment_answers
		 WHERE assessment_id = $1
		 ORDER BY step_number, question_id`,
		assessmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Answer, 0)
	for rows.Next() {
		var (
			a   Answer
			raw []byte
		)
		if err := rows.Scan(&a.ID, &a.AssessmentID, &a.StepNumber, &a.Section, &a.QuestionID, &raw, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &a.Value); err != nil {
			return nil, fmt.Errorf("decode answer %q: %w", a.QuestionID, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
