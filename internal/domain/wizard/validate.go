package wizard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	recentJobMinLen         = 10
	recentJobMaxLen         = 1000
	previousPositionsMinLen = 10
	previousPositionsMaxLen = 5000
	motivationMinLen        = 20
	motivationMaxLen        = 2000
	skillNameMinLen         = 2
	minCompetencies         = 5
)

// EducationLevels is the closed set of accepted qualification tiers for the
// education step.
var EducationLevels = []string{"bac", "bac+2", "bac+3", "bac+5", "bac+8"}

// StepPayload is the tagged-variant form of a step's answers. One variant per
// step; DecodeStepPayload selects it from the step number at the boundary.
type StepPayload interface {
	validate() []string
}

type WorkHistoryPayload struct {
	RecentJob         string
	PreviousPositions string
	ImportantAspects  string
}

type EducationPayload struct {
	HighestLevel     string
	FieldOfStudy     string
	Certifications   string
	CurrentEducation string
}

type SkillsPayload struct {
	Competencies     []SkillEntry
	AdditionalSkills string
}

// SkillEntry is one competency row of the skills step. The ok flags record
// whether the raw field decoded to the expected type, so validation can
// distinguish "missing" from "out of range" without re-reading the raw map.
type SkillEntry struct {
	SkillName           string
	SelfAssessmentLevel int
	SelfInterestLevel   int
	Category            string
	Context             string

	assessmentOK bool
	interestOK   bool
}

type MotivationsPayload struct {
	TopValues             []string
	CareerGoals           []string
	MotivationDescription string
}

type ConstraintsPayload struct {
	GeographicPreferences []string
	ContractTypes         []string
	SalaryExpectations    string
	OtherConstraints      string
}

// DecodeStepPayload builds the variant for the given step from a raw answer
// map. Malformed field types decode to zero values and surface as validation
// errors; only an out-of-range step number is an error here.
func DecodeStepPayload(step int, data map[string]any) (StepPayload, error) {
	switch Step(step) {
	case StepWorkHistory:
		return WorkHistoryPayload{
			RecentJob:         stringField(data, "recentJob"),
			PreviousPositions: stringField(data, "previousPositions"),
			ImportantAspects:  stringField(data, "importantAspects"),
		}, nil
	case StepEducation:
		return EducationPayload{
			HighestLevel:     stringField(data, "highestLevel"),
			FieldOfStudy:     stringField(data, "fieldOfStudy"),
			Certifications:   stringField(data, "certifications"),
			CurrentEducation: stringField(data, "currentEducation"),
		}, nil
	case StepSkills:
		return decodeSkillsPayload(data), nil
	case StepMotivations:
		return MotivationsPayload{
			TopValues:             stringListField(data, "topValues"),
			CareerGoals:           stringListField(data, "careerGoals"),
			MotivationDescription: stringField(data, "motivationDescription"),
		}, nil
	case StepConstraints:
		return ConstraintsPayload{
			GeographicPreferences: stringListField(data, "geographicPreferences"),
			ContractTypes:         stringListField(data, "contractTypes"),
			SalaryExpectations:    stringField(data, "salaryExpectations"),
			OtherConstraints:      stringField(data, "otherConstraints"),
		}, nil
	default:
		return nil, fmt.Errorf("invalid step number: %d", step)
	}
}

// ValidateStep checks an answer payload against the fixed rules of a step.
// It never panics on malformed input: wrong types and unknown step numbers
// produce a Result with Valid=false.
func ValidateStep(step int, data map[string]any) Result {
	payload, err := DecodeStepPayload(step, data)
	if err != nil {
		return invalidStepResult(step)
	}
	errs := payload.validate()
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func decodeSkillsPayload(data map[string]any) SkillsPayload {
	p := SkillsPayload{AdditionalSkills: stringField(data, "additionalSkills")}

	raw, ok := listField(data, "competencies")
	if !ok {
		return p
	}
	p.Competencies = make([]SkillEntry, 0, len(raw))
	for _, item := range raw {
		m, _ := item.(map[string]any)
		e := SkillEntry{
			SkillName: strings.TrimSpace(stringField(m, "skillName")),
			Category:  stringField(m, "category"),
			Context:   stringField(m, "context"),
		}
		e.SelfAssessmentLevel, e.assessmentOK = intField(m, "selfAssessmentLevel")
		e.SelfInterestLevel, e.interestOK = intField(m, "selfInterestLevel")
		p.Competencies = append(p.Competencies, e)
	}
	return p
}

func (p WorkHistoryPayload) validate() []string {
	var errs []string
	errs = appendLengthErrors(errs, "recentJob", p.RecentJob, recentJobMinLen, recentJobMaxLen)
	errs = appendLengthErrors(errs, "previousPositions", p.PreviousPositions, previousPositionsMinLen, previousPositionsMaxLen)
	return errs
}

func (p EducationPayload) validate() []string {
	if strings.TrimSpace(p.HighestLevel) == "" {
		return []string{"highestLevel is required"}
	}
	for _, lvl := range EducationLevels {
		if p.HighestLevel == lvl {
			return nil
		}
	}
	return []string{fmt.Sprintf("highestLevel must be one of: %s", strings.Join(EducationLevels, ", "))}
}

func (p SkillsPayload) validate() []string {
	var errs []string
	if len(p.Competencies) < minCompetencies {
		errs = append(errs, fmt.Sprintf("at least %d competencies are required (got %d)", minCompetencies, len(p.Competencies)))
	}
	for i, e := range p.Competencies {
		n := i + 1
		if utf8.RuneCountInString(e.SkillName) < skillNameMinLen {
			errs = append(errs, fmt.Sprintf("competency %d: skillName must be at least %d characters", n, skillNameMinLen))
		}
		if !e.assessmentOK || e.SelfAssessmentLevel < 1 || e.SelfAssessmentLevel > 4 {
			errs = append(errs, fmt.Sprintf("competency %d: selfAssessmentLevel must be an integer between 1 and 4", n))
		}
		if !e.interestOK || e.SelfInterestLevel < 1 || e.SelfInterestLevel > 10 {
			errs = append(errs, fmt.Sprintf("competency %d: selfInterestLevel must be an integer between 1 and 10", n))
		}
	}
	return errs
}

func (p MotivationsPayload) validate() []string {
	var errs []string
	if len(p.TopValues) == 0 {
		errs = append(errs, "at least one top value is required")
	}
	if len(p.CareerGoals) == 0 {
		errs = append(errs, "at least one career goal is required")
	}
	errs = appendLengthErrors(errs, "motivationDescription", p.MotivationDescription, motivationMinLen, motivationMaxLen)
	return errs
}

// validate always passes: every constraints field is optional, including the
// empty payload.
func (p ConstraintsPayload) validate() []string {
	return nil
}

// Bounds count characters, not bytes, so accented text is measured the same
// way the user sees it.
func appendLengthErrors(errs []string, field, value string, min, max int) []string {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		return append(errs, fmt.Sprintf("%s must be at least %d characters", field, min))
	}
	if n > max {
		return append(errs, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return errs
}
