package repository

import (
	"context"
	"time"

	"bilanpro/internal/database"
	"bilanpro/internal/domain/wizard"

	"github.com/google/uuid"
)

// CompetencyRecord is one extracted skill row, keyed by
// (assessment_id, skill_name) so re-extraction refreshes in place.
type CompetencyRecord struct {
	ID                  uuid.UUID
	AssessmentID        uuid.UUID
	SkillName           string
	Category            string
	SelfAssessmentLevel int
	SelfInterestLevel   int
	Context             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type CompetencyRepository interface {
	UpsertMany(ctx context.Context, assessmentID uuid.UUID, competencies []wizard.Competency) error
	ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]CompetencyRecord, error)
}

type PostgresCompetencyRepository struct {
	db database.DB
}

func NewPostgresCompetencyRepository(db database.DB) *PostgresCompetencyRepository {
	return &PostgresCompetencyRepository{db: db}
}

func (r *PostgresCompetencyRepository) UpsertMany(ctx context.Context, assessmentID uuid.UUID, competencies []wizard.Competency) error {
	if len(competencies) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, c := range competencies {
		_, err := tx.Exec(ctx,
			`INSERT INTO assessment_competencies
			   (id, assessment_id, skill_name, category, self_assessment_level, self_interest_level, context)
			 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
			 ON CONFLICT (assessment_id, skill_name)
			 DO UPDATE SET category = EXCLUDED.category,
			               self_assessment_level = EXCLUDED.self_assessment_level,
			               self_interest_level = EXCLUDED.self_interest_level,
			               context = EXCLUDED.context,
			               updated_at = NOW()`,
			uuid.New(), assessmentID, c.SkillName, c.Category,
			c.SelfAssessmentLevel, c.SelfInterestLevel, c.Context,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresCompetencyRepository) ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]CompetencyRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, assessment_id, skill_name, category,
		        self_assessment_level, self_interest_level, COALESCE(context, ''),
		        created_at, updated_at
		 FROM assessment_competencies
		 WHERE assessment_id = $1
		 ORDER BY skill_name`,
		assessmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CompetencyRecord, 0)
	for rows.Next() {
		var c CompetencyRecord
		if err := rows.Scan(
			&c.ID, &c.AssessmentID, &c.SkillName, &c.Category,
			&c.SelfAssessmentLevel, &c.SelfInterestLevel, &c.Context,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
