package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bilanpro/internal/domain/assessment"
	"bilanpro/internal/domain/wizard"
	"bilanpro/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssessmentRepo struct {
	items map[uuid.UUID]assessment.Assessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{items: map[uuid.UUID]assessment.Assessment{}}
}

func (f *fakeAssessmentRepo) Create(_ context.Context, a assessment.Assessment) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	f.items[a.ID] = a
	return nil
}

func (f *fakeAssessmentRepo) FindByID(_ context.Context, id uuid.UUID) (assessment.Assessment, error) {
	a, ok := f.items[id]
	if !ok {
		return assessment.Assessment{}, repository.ErrAssessmentNotFound
	}
	return a, nil
}

func (f *fakeAssessmentRepo) ListByBeneficiary(_ context.Context, beneficiaryID uuid.UUID) ([]assessment.Assessment, error) {
	out := make([]assessment.Assessment, 0)
	for _, a := range f.items {
		if a.BeneficiaryID == beneficiaryID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) UpdateProgress(_ context.Context, id uuid.UUID, currentStep, progressPct int, status assessment.Status) error {
	a, ok := f.items[id]
	if !ok {
		return repository.ErrAssessmentNotFound
	}
	a.CurrentStep = currentStep
	a.ProgressPercentage = progressPct
	a.Status = status
	f.items[id] = a
	return nil
}

func (f *fakeAssessmentRepo) MarkSubmitted(_ context.Context, id uuid.UUID) (time.Time, error) {
	a, ok := f.items[id]
	if !ok {
		return time.Time{}, repository.ErrAssessmentNotFound
	}
	now := time.Now().UTC()
	a.Status = assessment.StatusSubmitted
	a.SubmittedAt = &now
	a.ProgressPercentage = 100
	f.items[id] = a
	return now, nil
}

func (f *fakeAssessmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status assessment.Status) error {
	a, ok := f.items[id]
	if !ok {
		return repository.ErrAssessmentNotFound
	}
	a.Status = status
	f.items[id] = a
	return nil
}

func (f *fakeAssessmentRepo) AssignReviewer(_ context.Context, id, consultantID uuid.UUID) error {
	a, ok := f.items[id]
	if !ok {
		return repository.ErrAssessmentNotFound
	}
	a.ConsultantID = &consultantID
	a.Status = assessment.StatusUnderReview
	f.items[id] = a
	return nil
}

type fakeDraftRepo struct {
	drafts map[uuid.UUID]repository.Draft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: map[uuid.UUID]repository.Draft{}}
}

func (f *fakeDraftRepo) Create(_ context.Context, assessmentID uuid.UUID, data wizard.DraftData) (repository.Draft, error) {
	d := repository.Draft{ID: uuid.New(), AssessmentID: assessmentID, Data: data, LastSavedAt: time.Now().UTC()}
	f.drafts[assessmentID] = d
	return d, nil
}

func (f *fakeDraftRepo) FindByAssessmentID(_ context.Context, assessmentID uuid.UUID) (repository.Draft, error) {
	d, ok := f.drafts[assessmentID]
	if !ok {
		return repository.Draft{}, repository.ErrDraftNotFound
	}
	return d, nil
}

func (f *fakeDraftRepo) Save(_ context.Context, assessmentID uuid.UUID, step int, data wizard.DraftData) (repository.Draft, error) {
	d, ok := f.drafts[assessmentID]
	if !ok {
		d = repository.Draft{ID: uuid.New(), AssessmentID: assessmentID}
	}
	d.Data = data
	d.CurrentStep = step
	d.LastSavedAt = time.Now().UTC()
	f.drafts[assessmentID] = d
	return d, nil
}

func (f *fakeDraftRepo) DeleteByAssessmentID(_ context.Context, assessmentID uuid.UUID) error {
	delete(f.drafts, assessmentID)
	return nil
}

type fakeAnswerRepo struct {
	answers   map[uuid.UUID]map[int]map[string]wizard.AnswerValue
	probeErrs map[int]error
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: map[uuid.UUID]map[int]map[string]wizard.AnswerValue{}, probeErrs: map[int]error{}}
}

func (f *fakeAnswerRepo) UpsertMany(_ context.Context, assessmentID uuid.UUID, step int, in map[string]wizard.AnswerValue) error {
	if len(in) == 0 {
		return nil
	}
	bySt, ok := f.answers[assessmentID]
	if !ok {
		bySt = map[int]map[string]wizard.AnswerValue{}
		f.answers[assessmentID] = bySt
	}
	byQ, ok := bySt[step]
	if !ok {
		byQ = map[string]wizard.AnswerValue{}
		bySt[step] = byQ
	}
	for q, v := range in {
		byQ[q] = v
	}
	return nil
}

func (f *fakeAnswerRepo) StepHasAnswers(_ context.Context, assessmentID uuid.UUID, step int) (bool, error) {
	if err := f.probeErrs[step]; err != nil {
		return false, err
	}
	return len(f.answers[assessmentID][step]) > 0, nil
}

func (f *fakeAnswerRepo) ListByAssessment(_ context.Context, assessmentID uuid.UUID) ([]repository.Answer, error) {
	out := make([]repository.Answer, 0)
	for step, byQ := range f.answers[assessmentID] {
		for q, v := range byQ {
			out = append(out, repository.Answer{AssessmentID: assessmentID, StepNumber: step, QuestionID: q, Value: v})
		}
	}
	return out, nil
}

type fakeCompetencyRepo struct {
	recs map[uuid.UUID]map[string]wizard.Competency
}

func newFakeCompetencyRepo() *fakeCompetencyRepo {
	return &fakeCompetencyRepo{recs: map[uuid.UUID]map[string]wizard.Competency{}}
}

func (f *fakeCompetencyRepo) UpsertMany(_ context.Context, assessmentID uuid.UUID, competencies []wizard.Competency) error {
	byName, ok := f.recs[assessmentID]
	if !ok {
		byName = map[string]wizard.Competency{}
		f.recs[assessmentID] = byName
	}
	for _, c := range competencies {
		byName[c.SkillName] = c
	}
	return nil
}

func (f *fakeCompetencyRepo) ListByAssessment(_ context.Context, assessmentID uuid.UUID) ([]repository.CompetencyRecord, error) {
	out := make([]repository.CompetencyRecord, 0)
	for _, c := range f.recs[assessmentID] {
		out = append(out, repository.CompetencyRecord{
			ID:                  uuid.New(),
			AssessmentID:        assessmentID,
			SkillName:           c.SkillName,
			Category:            c.Category,
			SelfAssessmentLevel: c.SelfAssessmentLevel,
			SelfInterestLevel:   c.SelfInterestLevel,
			Context:             c.Context,
		})
	}
	return out, nil
}

type testEnv struct {
	svc          *AssessmentService
	assessments  *fakeAssessmentRepo
	drafts       *fakeDraftRepo
	answers      *fakeAnswerRepo
	competencies *fakeCompetencyRepo
}

func newTestEnv() *testEnv {
	assessments := newFakeAssessmentRepo()
	drafts := newFakeDraftRepo()
	answers := newFakeAnswerRepo()
	competencies := newFakeCompetencyRepo()

	svc := NewAssessmentService(
		assessments,
		drafts,
		answers,
		competencies,
		NewProgressCalculator(answers, nil),
		nil,
		nil,
	)
	return &testEnv{svc: svc, assessments: assessments, drafts: drafts, answers: answers, competencies: competencies}
}

func stepData(step int) map[string]any {
	switch step {
	case 1:
		return map[string]any{
			"recentJob":         "Senior project manager at a logistics firm",
			"previousPositions": "Five years as team lead, two as analyst",
		}
	case 2:
		return map[string]any{"highestLevel": "bac+3"}
	case 3:
		comps := make([]any, 0, 5)
		for i := 0; i < 5; i++ {
			comps = append(comps, map[string]any{
				"skillName":           fmt.Sprintf("Skill %d", i+1),
				"selfAssessmentLevel": 3,
				"selfInterestLevel":   7,
			})
		}
		return map[string]any{"competencies": comps}
	case 4:
		return map[string]any{
			"topValues":             []any{"autonomy"},
			"careerGoals":           []any{"lead a team"},
			"motivationDescription": "I want to move toward coordination roles.",
		}
	default:
		return map[string]any{}
	}
}

func TestCreateDraft(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	a, draft, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	assert.Equal(t, assessment.StatusDraft, a.Status)
	assert.Equal(t, 0, a.CurrentStep)
	assert.Equal(t, 0, a.ProgressPercentage)
	assert.Equal(t, "Career Assessment", a.Title)
	assert.Equal(t, assessment.TypeCareer, a.Type)
	assert.Equal(t, a.ID, draft.AssessmentID)
	assert.NotNil(t, draft.Data.Slot(1))
}

func TestCreateDraft_InvalidType(t *testing.T) {
	env := newTestEnv()
	_, _, err := env.svc.CreateDraft(context.Background(), uuid.New(), CreateAssessmentInput{Type: "astrology"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveStep_ValidationGate(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.SaveStep(context.Background(), userID, a.ID, 1, map[string]any{"recentJob": "short"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, vErr.Step)
	assert.NotEmpty(t, vErr.Messages)

	// Rejected saves must leave no trace.
	has, _ := env.answers.StepHasAnswers(context.Background(), a.ID, 1)
	assert.False(t, has)
	got, _ := env.assessments.FindByID(context.Background(), a.ID)
	assert.Equal(t, assessment.StatusDraft, got.Status)
	assert.Equal(t, 0, got.ProgressPercentage)
}

func TestSaveStep_Success(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	got, err := env.svc.SaveStep(context.Background(), userID, a.ID, 1, stepData(1))
	require.NoError(t, err)

	assert.Equal(t, assessment.StatusInProgress, got.Status)
	assert.Equal(t, 1, got.CurrentStep, "current step records the step just saved")
	assert.Equal(t, 20, got.ProgressPercentage)

	has, err := env.answers.StepHasAnswers(context.Background(), a.ID, 1)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSaveStep_GateOrder(t *testing.T) {
	env := newTestEnv()
	owner := uuid.New()
	stranger := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), owner, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.SaveStep(context.Background(), owner, uuid.New(), 1, stepData(1))
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = env.svc.SaveStep(context.Background(), stranger, a.ID, 1, stepData(1))
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSaveStep_EmptyConstraintsStepCounts(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.SaveStep(context.Background(), userID, a.ID, 5, map[string]any{})
	require.NoError(t, err)

	has, err := env.answers.StepHasAnswers(context.Background(), a.ID, 5)
	require.NoError(t, err)
	assert.True(t, has, "empty constraints save should record completion")
}

func TestSaveStep_SkillsStepExtractsCompetencies(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.SaveStep(context.Background(), userID, a.ID, 3, stepData(3))
	require.NoError(t, err)

	recs, err := env.competencies.ListByAssessment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestAutoSave_NoProgressEffect(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	// Partial, invalid input is fine for autosave.
	draft, err := env.svc.AutoSave(context.Background(), userID, a.ID, 1, map[string]any{"recentJob": "unfi"})
	require.NoError(t, err)
	assert.Equal(t, "unfi", draft.Data.Slot(1)["recentJob"])
	assert.Equal(t, 1, draft.CurrentStep, "autosave records where the user is")

	got, _ := env.assessments.FindByID(context.Background(), a.ID)
	assert.Equal(t, assessment.StatusDraft, got.Status)
	assert.Equal(t, 0, got.ProgressPercentage)
	assert.Equal(t, 0, got.CurrentStep)

	has, _ := env.answers.StepHasAnswers(context.Background(), a.ID, 1)
	assert.False(t, has, "autosave must not create answers")
}

func TestAutoSave_ShallowMergeKeepsOtherKeys(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.AutoSave(context.Background(), userID, a.ID, 1, map[string]any{"recentJob": "first", "importantAspects": "autonomy"})
	require.NoError(t, err)

	draft, err := env.svc.AutoSave(context.Background(), userID, a.ID, 1, map[string]any{"recentJob": "second"})
	require.NoError(t, err)

	slot := draft.Data.Slot(1)
	assert.Equal(t, "second", slot["recentJob"])
	assert.Equal(t, "autonomy", slot["importantAspects"])
}

func TestAutoSave_InvalidStep(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.AutoSave(context.Background(), userID, a.ID, 9, map[string]any{"k": "v"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProgress_Monotonic(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	want := []int{20, 40, 60, 80, 100}
	for step := 1; step <= 5; step++ {
		_, err := env.svc.SaveStep(context.Background(), userID, a.ID, step, stepData(step))
		require.NoError(t, err, "step %d", step)

		report, err := env.svc.Progress(context.Background(), userID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, want[step-1], report.Percentage, "after step %d", step)
		assert.Equal(t, step, report.CompletedSteps)
		assert.Equal(t, step, report.CurrentStep)
	}
}

func TestProgress_CarriesResumeState(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.AutoSave(context.Background(), userID, a.ID, 2, map[string]any{"fieldOfStudy": "logistics"})
	require.NoError(t, err)

	report, err := env.svc.Progress(context.Background(), userID, a.ID)
	require.NoError(t, err)

	assert.Equal(t, assessment.StatusDraft, report.Status)
	assert.Equal(t, 0, report.CurrentStep)
	assert.Equal(t, 0, report.Percentage)
	assert.Equal(t, "logistics", report.Draft.Slot(2)["fieldOfStudy"])
	require.NotNil(t, report.LastSavedAt)
	assert.WithinDuration(t, time.Now(), *report.LastSavedAt, time.Minute)
}

func TestProgress_EmptyDraftAfterSubmit(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	for step := 1; step <= 5; step++ {
		_, err := env.svc.SaveStep(context.Background(), userID, a.ID, step, stepData(step))
		require.NoError(t, err)
	}
	_, err = env.svc.Submit(context.Background(), userID, a.ID)
	require.NoError(t, err)

	report, err := env.svc.Progress(context.Background(), userID, a.ID)
	require.NoError(t, err)

	assert.Equal(t, assessment.StatusSubmitted, report.Status)
	assert.Equal(t, 100, report.Percentage)
	for step := 1; step <= 5; step++ {
		assert.Empty(t, report.Draft.Slot(step), "draft slot %d should be cleared", step)
	}
	assert.Nil(t, report.LastSavedAt)
}

func TestProgress_SwallowsProbeErrors(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	for _, step := range []int{1, 2} {
		_, err := env.svc.SaveStep(context.Background(), userID, a.ID, step, stepData(step))
		require.NoError(t, err)
	}
	env.answers.probeErrs[2] = errors.New("connection reset")

	report, err := env.svc.Progress(context.Background(), userID, a.ID)
	require.NoError(t, err, "a failing step probe must not fail the whole read")
	assert.Equal(t, 1, report.CompletedSteps)
	assert.True(t, report.Steps["step1"])
	assert.False(t, report.Steps["step2"])
}

func TestSubmit_Incomplete(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	for step := 1; step <= 4; step++ {
		_, err := env.svc.SaveStep(context.Background(), userID, a.ID, step, stepData(step))
		require.NoError(t, err)
	}

	_, err = env.svc.Submit(context.Background(), userID, a.ID)

	var incErr *IncompleteError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, 4, incErr.Completed)
	assert.Equal(t, "assessment incomplete: 4/5 steps completed", incErr.Error())
}

func TestSubmit_Success(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	for step := 1; step <= 5; step++ {
		_, err := env.svc.SaveStep(context.Background(), userID, a.ID, step, stepData(step))
		require.NoError(t, err)
	}

	got, err := env.svc.Submit(context.Background(), userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusSubmitted, got.Status)
	assert.NotNil(t, got.SubmittedAt)
	assert.Equal(t, 100, got.ProgressPercentage)

	_, err = env.drafts.FindByAssessmentID(context.Background(), a.ID)
	assert.ErrorIs(t, err, repository.ErrDraftNotFound, "draft should be cleaned up after submit")

	// Second submit is a no-op.
	again, err := env.svc.Submit(context.Background(), userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusSubmitted, again.Status)
}

func TestSubmit_GateOrder(t *testing.T) {
	env := newTestEnv()
	owner := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), owner, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.Submit(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = env.svc.Submit(context.Background(), uuid.New(), a.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestReviewAndComplete(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	consultantID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	for step := 1; step <= 5; step++ {
		_, err := env.svc.SaveStep(context.Background(), userID, a.ID, step, stepData(step))
		require.NoError(t, err)
	}
	_, err = env.svc.Submit(context.Background(), userID, a.ID)
	require.NoError(t, err)

	reviewed, err := env.svc.Review(context.Background(), consultantID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusUnderReview, reviewed.Status)
	require.NotNil(t, reviewed.ConsultantID)
	assert.Equal(t, consultantID, *reviewed.ConsultantID)

	// Only the assigned consultant may complete.
	_, err = env.svc.Complete(context.Background(), uuid.New(), a.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	completed, err := env.svc.Complete(context.Background(), consultantID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = env.svc.Archive(context.Background(), userID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestReview_RequiresSubmitted(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	_, err = env.svc.Review(context.Background(), uuid.New(), a.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestArchive(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	got, err := env.svc.Archive(context.Background(), userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusArchived, got.Status)

	_, err = env.svc.Archive(context.Background(), userID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = env.svc.SaveStep(context.Background(), userID, a.ID, 1, stepData(1))
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestGetDraft_MissingReturnsEmpty(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	a, _, err := env.svc.CreateDraft(context.Background(), userID, CreateAssessmentInput{})
	require.NoError(t, err)

	require.NoError(t, env.drafts.DeleteByAssessmentID(context.Background(), a.ID))

	draft, err := env.svc.GetDraft(context.Background(), userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, draft.AssessmentID)
	assert.NotNil(t, draft.Data.Slot(1))
}
