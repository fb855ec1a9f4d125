package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bilanpro/internal/domain/assessment"
	"bilanpro/internal/domain/wizard"
	"bilanpro/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrAssessmentNotFound      = errors.New("assessment not found")
	ErrNotOwner                = errors.New("assessment does not belong to user")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// ValidationError carries the per-field messages of a rejected step save.
type ValidationError struct {
	Step     int
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d validation failed: %s", e.Step, strings.Join(e.Messages, "; "))
}

// IncompleteError rejects submission of an assessment that still has steps
// without validated answers.
type IncompleteError struct {
	Completed int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("assessment incomplete: %d/%d steps completed", e.Completed, wizard.StepCount)
}

type CreateAssessmentInput struct {
	Title       string
	Description string
	Type        string
}

// ProgressReport is the resume view served to the wizard UI: completion state
// derived from answers, plus the live status, current step, and draft scratch
// data so the client can reopen exactly where the user left off.
type ProgressReport struct {
	AssessmentID   uuid.UUID         `json:"assessment_id"`
	Status         assessment.Status `json:"status"`
	CurrentStep    int               `json:"current_step"`
	CompletedSteps int               `json:"completed_steps"`
	TotalSteps     int               `json:"total_steps"`
	Percentage     int               `json:"percentage"`
	Steps          map[string]bool   `json:"steps"`
	Draft          wizard.DraftData  `json:"draft"`
	LastSavedAt    *time.Time        `json:"last_saved_at,omitempty"`
}

type AssessmentUsecase interface {
	CreateDraft(ctx context.Context, beneficiaryID uuid.UUID, in CreateAssessmentInput) (assessment.Assessment, repository.Draft, error)
	Get(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error)
	GetDraft(ctx context.Context, userID, id uuid.UUID) (repository.Draft, error)
	List(ctx context.Context, beneficiaryID uuid.UUID) ([]assessment.Assessment, error)
	SaveStep(ctx context.Context, userID, id uuid.UUID, step int, data map[string]any) (assessment.Assessment, error)
	AutoSave(ctx context.Context, userID, id uuid.UUID, step int, partial map[string]any) (repository.Draft, error)
	Progress(ctx context.Context, userID, id uuid.UUID) (ProgressReport, error)
	Submit(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error)
	Review(ctx context.Context, consultantID, id uuid.UUID) (assessment.Assessment, error)
	Complete(ctx context.Context, consultantID, id uuid.UUID) (assessment.Assessment, error)
	Archive(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error)
	ExtractCompetencies(ctx context.Context, userID, id uuid.UUID) ([]repository.CompetencyRecord, error)
	ListCompetencies(ctx context.Context, userID, id uuid.UUID) ([]repository.CompetencyRecord, error)
}

type AssessmentService struct {
	assessments  repository.AssessmentRepository
	drafts       repository.DraftRepository
	answers      repository.AnswerRepository
	competencies repository.CompetencyRepository

	progress *ProgressCalculator
	cache    ProgressCache
	log      *zap.Logger
}

func NewAssessmentService(
	assessments repository.AssessmentRepository,
	drafts repository.DraftRepository,
	answers repository.AnswerRepository,
	competencies repository.CompetencyRepository,
	progress *ProgressCalculator,
	cache ProgressCache,
	log *zap.Logger,
) *AssessmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssessmentService{
		assessments:  assessments,
		drafts:       drafts,
		answers:      answers,
		competencies: competencies,
		progress:     progress,
		cache:        cache,
		log:          log,
	}
}

func (s *AssessmentService) CreateDraft(ctx context.Context, beneficiaryID uuid.UUID, in CreateAssessmentInput) (assessment.Assessment, repository.Draft, error) {
	typ := assessment.TypeCareer
	if raw := strings.TrimSpace(in.Type); raw != "" {
		parsed, ok := assessment.ParseType(raw)
		if !ok {
			return assessment.Assessment{}, repository.Draft{}, ErrInvalidInput
		}
		typ = parsed
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = assessment.DefaultTitle(typ)
	}

	a := assessment.Assessment{
		ID:            uuid.New(),
		BeneficiaryID: beneficiaryID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Type:          typ,
		Status:        assessment.StatusDraft,
		CurrentStep:   0,
	}

	if err := s.assessments.Create(ctx, a); err != nil {
		return assessment.Assessment{}, repository.Draft{}, fmt.Errorf("create assessment: %w", err)
	}

	draft, err := s.drafts.Create(ctx, a.ID, wizard.NewDraftData())
	if err != nil {
		return assessment.Assessment{}, repository.Draft{}, fmt.Errorf("create draft: %w", err)
	}

	created, err := s.assessments.FindByID(ctx, a.ID)
	if err != nil {
		return assessment.Assessment{}, repository.Draft{}, err
	}
	return created, draft, nil
}

func (s *AssessmentService) Get(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error) {
	return s.readableAssessment(ctx, userID, id)
}

func (s *AssessmentService) GetDraft(ctx context.Context, userID, id uuid.UUID) (repository.Draft, error) {
	if _, err := s.readableAssessment(ctx, userID, id); err != nil {
		return repository.Draft{}, err
	}

	draft, err := s.drafts.FindByAssessmentID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return repository.Draft{AssessmentID: id, Data: wizard.NewDraftData()}, nil
		}
		return repository.Draft{}, err
	}
	return draft, nil
}

func (s *AssessmentService) List(ctx context.Context, beneficiaryID uuid.UUID) ([]assessment.Assessment, error) {
	return s.assessments.ListByBeneficiary(ctx, beneficiaryID)
}

func (s *AssessmentService) SaveStep(ctx context.Context, userID, id uuid.UUID, step int, data map[string]any) (assessment.Assessment, error) {
	a, err := s.ownedAssessment(ctx, userID, id)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if !editable(a.Status) {
		return assessment.Assessment{}, ErrInvalidStatusTransition
	}

	if res := wizard.ValidateStep(step, data); !res.Valid {
		return assessment.Assessment{}, &ValidationError{Step: step, Messages: res.Errors}
	}

	merged, err := s.mergeDraft(ctx, id, step, data)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if _, err := s.drafts.Save(ctx, id, step, merged); err != nil {
		return assessment.Assessment{}, fmt.Errorf("save draft: %w", err)
	}

	tagged := make(map[string]wizard.AnswerValue, len(data))
	for key, value := range data {
		tagged[key] = wizard.Tag(value)
	}
	// A step with no required fields still counts toward progress once saved,
	// so a field-less save records a completion marker.
	if len(tagged) == 0 {
		tagged[wizard.Step(step).Section()+".completed"] = wizard.Tag(true)
	}
	if err := s.answers.UpsertMany(ctx, id, step, tagged); err != nil {
		return assessment.Assessment{}, fmt.Errorf("save answers: %w", err)
	}

	if wizard.Step(step) == wizard.StepSkills {
		if comps := wizard.ExtractCompetencies(merged); len(comps) > 0 {
			if err := s.competencies.UpsertMany(ctx, id, comps); err != nil {
				return assessment.Assessment{}, fmt.Errorf("save competencies: %w", err)
			}
		}
	}

	completion := s.progress.Completion(ctx, id)

	status := a.Status
	if status == assessment.StatusDraft {
		status = assessment.StatusInProgress
	}

	// current_step records the step just saved, not the next one.
	if err := s.assessments.UpdateProgress(ctx, id, step, completion.Percentage(), status); err != nil {
		return assessment.Assessment{}, err
	}
	s.invalidateProgress(ctx, id)

	return s.assessments.FindByID(ctx, id)
}

func (s *AssessmentService) AutoSave(ctx context.Context, userID, id uuid.UUID, step int, partial map[string]any) (repository.Draft, error) {
	a, err := s.ownedAssessment(ctx, userID, id)
	if err != nil {
		return repository.Draft{}, err
	}
	if !editable(a.Status) {
		return repository.Draft{}, ErrInvalidStatusTransition
	}

	merged, err := s.mergeDraft(ctx, id, step, partial)
	if err != nil {
		return repository.Draft{}, err
	}

	draft, err := s.drafts.Save(ctx, id, step, merged)
	if err != nil {
		return repository.Draft{}, fmt.Errorf("save draft: %w", err)
	}
	// Draft contents ride in the cached progress report.
	s.invalidateProgress(ctx, id)
	return draft, nil
}

func (s *AssessmentService) Progress(ctx context.Context, userID, id uuid.UUID) (ProgressReport, error) {
	a, err := s.readableAssessment(ctx, userID, id)
	if err != nil {
		return ProgressReport{}, err
	}

	key := progressCacheKey(id)
	if s.cache != nil {
		var cached ProgressReport
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	draftData := wizard.NewDraftData()
	var lastSaved *time.Time
	if draft, err := s.drafts.FindByAssessmentID(ctx, id); err == nil {
		draftData = draft.Data
		ts := draft.LastSavedAt
		lastSaved = &ts
	} else if !errors.Is(err, repository.ErrDraftNotFound) {
		return ProgressReport{}, err
	}

	completion := s.progress.Completion(ctx, id)
	report := ProgressReport{
		AssessmentID:   id,
		Status:         a.Status,
		CurrentStep:    a.CurrentStep,
		CompletedSteps: completion.Completed,
		TotalSteps:     wizard.StepCount,
		Percentage:     completion.Percentage(),
		Steps:          make(map[string]bool, wizard.StepCount),
		Draft:          draftData,
		LastSavedAt:    lastSaved,
	}
	for step := 1; step <= wizard.StepCount; step++ {
		report.Steps[fmt.Sprintf("step%d", step)] = completion.Steps[step-1]
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, report, progressCacheTTL); err != nil {
			s.log.Warn("progress cache write failed", zap.String("assessment_id", id.String()), zap.Error(err))
		}
	}
	return report, nil
}

func (s *AssessmentService) Submit(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.ownedAssessment(ctx, userID, id)
	if err != nil {
		return assessment.Assessment{}, err
	}

	// Submitting twice is a no-op; later states reject.
	if a.Status == assessment.StatusSubmitted {
		return a, nil
	}
	if !editable(a.Status) {
		return assessment.Assessment{}, ErrInvalidStatusTransition
	}

	completion := s.progress.Completion(ctx, id)
	if completion.Completed < wizard.StepCount {
		return assessment.Assessment{}, &IncompleteError{Completed: completion.Completed}
	}

	if _, err := s.assessments.MarkSubmitted(ctx, id); err != nil {
		return assessment.Assessment{}, err
	}

	if err := s.drafts.DeleteByAssessmentID(ctx, id); err != nil {
		s.log.Warn("draft cleanup failed after submit", zap.String("assessment_id", id.String()), zap.Error(err))
	}
	s.invalidateProgress(ctx, id)

	return s.assessments.FindByID(ctx, id)
}

func (s *AssessmentService) Review(ctx context.Context, consultantID, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.findAssessment(ctx, id)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if !a.Status.CanTransitionTo(assessment.StatusUnderReview) {
		return assessment.Assessment{}, ErrInvalidStatusTransition
	}

	if err := s.assessments.AssignReviewer(ctx, id, consultantID); err != nil {
		return assessment.Assessment{}, err
	}
	s.invalidateProgress(ctx, id)
	return s.assessments.FindByID(ctx, id)
}

func (s *AssessmentService) Complete(ctx context.Context, consultantID, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.findAssessment(ctx, id)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if a.ConsultantID == nil || *a.ConsultantID != consultantID {
		return assessment.Assessment{}, ErrNotOwner
	}
	if !a.Status.CanTransitionTo(assessment.StatusCompleted) {
		return assessment.Assessment{}, ErrInvalidStatusTransition
	}

	if err := s.assessments.UpdateStatus(ctx, id, assessment.StatusCompleted); err != nil {
		return assessment.Assessment{}, err
	}
	s.invalidateProgress(ctx, id)
	return s.assessments.FindByID(ctx, id)
}

func (s *AssessmentService) Archive(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.readableAssessment(ctx, userID, id)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if !a.Status.CanTransitionTo(assessment.StatusArchived) {
		return assessment.Assessment{}, ErrInvalidStatusTransition
	}

	if err := s.assessments.UpdateStatus(ctx, id, assessment.StatusArchived); err != nil {
		return assessment.Assessment{}, err
	}
	s.invalidateProgress(ctx, id)

	return s.assessments.FindByID(ctx, id)
}

func (s *AssessmentService) ExtractCompetencies(ctx context.Context, userID, id uuid.UUID) ([]repository.CompetencyRecord, error) {
	if _, err := s.ownedAssessment(ctx, userID, id); err != nil {
		return nil, err
	}

	draft, err := s.drafts.FindByAssessmentID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return s.competencies.ListByAssessment(ctx, id)
		}
		return nil, err
	}

	comps := wizard.ExtractCompetencies(draft.Data)
	if len(comps) > 0 {
		if err := s.competencies.UpsertMany(ctx, id, comps); err != nil {
			return nil, fmt.Errorf("save competencies: %w", err)
		}
	}
	return s.competencies.ListByAssessment(ctx, id)
}

func (s *AssessmentService) ListCompetencies(ctx context.Context, userID, id uuid.UUID) ([]repository.CompetencyRecord, error) {
	if _, err := s.readableAssessment(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.competencies.ListByAssessment(ctx, id)
}

func (s *AssessmentService) findAssessment(ctx context.Context, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.assessments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssessmentNotFound) {
			return assessment.Assessment{}, ErrAssessmentNotFound
		}
		return assessment.Assessment{}, err
	}
	return a, nil
}

// ownedAssessment is the write-side gate: only the beneficiary may mutate.
// Not-found is checked before ownership so a probing caller cannot tell a
// foreign assessment from a missing one by the order of failures alone.
func (s *AssessmentService) ownedAssessment(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.findAssessment(ctx, id)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if a.BeneficiaryID != userID {
		return assessment.Assessment{}, ErrNotOwner
	}
	return a, nil
}

// readableAssessment additionally admits the assigned consultant.
func (s *AssessmentService) readableAssessment(ctx context.Context, userID, id uuid.UUID) (assessment.Assessment, error) {
	a, err := s.findAssessment(ctx, id)
	if err != nil {
		return assessment.Assessment{}, err
	}
	if a.BeneficiaryID == userID {
		return a, nil
	}
	if a.ConsultantID != nil && *a.ConsultantID == userID {
		return a, nil
	}
	return assessment.Assessment{}, ErrNotOwner
}

func (s *AssessmentService) mergeDraft(ctx context.Context, id uuid.UUID, step int, partial map[string]any) (wizard.DraftData, error) {
	data := wizard.NewDraftData()
	draft, err := s.drafts.FindByAssessmentID(ctx, id)
	if err == nil {
		data = draft.Data
	} else if !errors.Is(err, repository.ErrDraftNotFound) {
		return wizard.DraftData{}, err
	}

	merged, err := wizard.Merge(data, step, partial)
	if err != nil {
		return wizard.DraftData{}, ErrInvalidInput
	}
	return merged, nil
}

func (s *AssessmentService) invalidateProgress(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, progressCacheKey(id)); err != nil {
		s.log.Warn("progress cache invalidation failed", zap.String("assessment_id", id.String()), zap.Error(err))
	}
}

func editable(st assessment.Status) bool {
	return st == assessment.StatusDraft || st == assessment.StatusInProgress
}
