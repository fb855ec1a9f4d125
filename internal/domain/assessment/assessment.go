package assessment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusCompleted   Status = "COMPLETED"
	StatusArchived    Status = "ARCHIVED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusArchived
}

// CanTransitionTo enforces the linear lifecycle
// DRAFT -> IN_PROGRESS -> SUBMITTED -> UNDER_REVIEW -> COMPLETED,
// with ARCHIVED reachable from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusArchived {
		return !s.Terminal()
	}
	switch s {
	case StatusDraft:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusUnderReview
	case StatusUnderReview:
		return next == StatusCompleted
	default:
		return false
	}
}

type Type string

const (
	TypeCareer        Type = "career"
	TypeSkills        Type = "skills"
	TypeComprehensive Type = "comprehensive"
)

func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeCareer, TypeSkills, TypeComprehensive:
		return Type(s), true
	default:
		return "", false
	}
}

// DefaultTitle is used when the caller starts a wizard without naming it.
func DefaultTitle(t Type) string {
	switch t {
	case TypeSkills:
		return "Skills Assessment"
	case TypeComprehensive:
		return "Comprehensive Assessment"
	default:
		return "Career Assessment"
	}
}

// Assessment is one beneficiary engagement, the aggregate root of the wizard.
// CurrentStep and ProgressPercentage are derived fields owned by the lifecycle
// controller; nothing else writes them.
type Assessment struct {
	ID                 uuid.UUID
	BeneficiaryID      uuid.UUID
	ConsultantID       *uuid.UUID
	Title              string
	Description        string
	Type               Type
	Status             Status
	CurrentStep        int
	ProgressPercentage int
	SubmittedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
