package usecase

import (
	"context"

	"bilanpro/internal/domain/wizard"
	"bilanpro/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StepCompletion reports which wizard steps have validated answers on record.
type StepCompletion struct {
	Steps     [wizard.StepCount]bool
	Completed int
}

func (s StepCompletion) Percentage() int {
	return wizard.Percentage(s.Completed)
}

// ProgressCalculator derives completion from answer presence. A step counts
// as complete once at least one validated answer row exists for it; a probe
// failure on one step is logged and that step reported incomplete, so a
// partial storage outage degrades the number instead of failing the read.
type ProgressCalculator struct {
	answers repository.AnswerRepository
	log     *zap.Logger
}

func NewProgressCalculator(answers repository.AnswerRepository, log *zap.Logger) *ProgressCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressCalculator{answers: answers, log: log}
}

func (p *ProgressCalculator) Completion(ctx context.Context, assessmentID uuid.UUID) StepCompletion {
	var out StepCompletion
	for step := 1; step <= wizard.StepCount; step++ {
		has, err := p.answers.StepHasAnswers(ctx, assessmentID, step)
		if err != nil {
			p.log.Warn("step completion probe failed",
				zap.String("assessment_id", assessmentID.String()),
				zap.Int("step", step),
				zap.Error(err),
			)
			continue
		}
		if has {
			out.Steps[step-1] = true
			out.Completed++
		}
	}
	return out
}
