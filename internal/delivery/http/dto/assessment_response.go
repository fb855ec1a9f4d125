package dto

import (
	"time"

	"bilanpro/internal/domain/assessment"
	"bilanpro/internal/domain/wizard"
	"bilanpro/internal/repository"

	"github.com/google/uuid"
)

type AssessmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	BeneficiaryID      uuid.UUID  `json:"beneficiary_id"`
	ConsultantID       *uuid.UUID `json:"consultant_id,omitempty"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Type               string     `json:"assessment_type"`
	Status             string     `json:"status"`
	CurrentStep        int        `json:"current_step"`
	ProgressPercentage int        `json:"progress_percentage"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func NewAssessmentResponse(a assessment.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:                 a.ID,
		BeneficiaryID:      a.BeneficiaryID,
		ConsultantID:       a.ConsultantID,
		Title:              a.Title,
		Description:        a.Description,
		Type:               string(a.Type),
		Status:             string(a.Status),
		CurrentStep:        a.CurrentStep,
		ProgressPercentage: a.ProgressPercentage,
		SubmittedAt:        a.SubmittedAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func NewAssessmentListResponse(items []assessment.Assessment) []AssessmentResponse {
	out := make([]AssessmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewAssessmentResponse(a))
	}
	return out
}

type DraftResponse struct {
	AssessmentID uuid.UUID        `json:"assessment_id"`
	Data         wizard.DraftData `json:"draft_data"`
	CurrentStep  int              `json:"current_step_number"`
	LastSavedAt  *time.Time       `json:"last_saved_at,omitempty"`
}

func NewDraftResponse(d repository.Draft) DraftResponse {
	res := DraftResponse{AssessmentID: d.AssessmentID, Data: d.Data, CurrentStep: d.CurrentStep}
	if !d.LastSavedAt.IsZero() {
		t := d.LastSavedAt
		res.LastSavedAt = &t
	}
	return res
}

type CompetencyResponse struct {
	ID                  uuid.UUID `json:"id"`
	SkillName           string    `json:"skill_name"`
	Category            string    `json:"category"`
	SelfAssessmentLevel int       `json:"self_assessment_level"`
	SelfInterestLevel   int       `json:"self_interest_level"`
	Context             string    `json:"context,omitempty"`
}

func NewCompetencyListResponse(items []repository.CompetencyRecord) []CompetencyResponse {
	out := make([]CompetencyResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CompetencyResponse{
			ID:                  c.ID,
			SkillName:           c.SkillName,
			Category:            c.Category,
			SelfAssessmentLevel: c.SelfAssessmentLevel,
			SelfInterestLevel:   c.SelfInterestLevel,
			Context:             c.Context,
		})
	}
	return out
}

type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
