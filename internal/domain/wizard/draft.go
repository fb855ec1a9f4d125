package wizard

import "fmt"

// StepDraft is the partial, non-validated scratch payload of one step.
type StepDraft map[string]any

// DraftData is the fixed five-slot scratch record behind autosave. Each slot
// holds whatever partial payload the user has typed so far for that step;
// nothing in here has passed step validation.
type DraftData struct {
	Step1 StepDraft `json:"step1,omitempty"`
	Step2 StepDraft `json:"step2,omitempty"`
	Step3 StepDraft `json:"step3,omitempty"`
	Step4 StepDraft `json:"step4,omitempty"`
	Step5 StepDraft `json:"step5,omitempty"`
}

// NewDraftData returns a draft with all five slots initialized empty.
func NewDraftData() DraftData {
	return DraftData{
		Step1: StepDraft{},
		Step2: StepDraft{},
		Step3: StepDraft{},
		Step4: StepDraft{},
		Step5: StepDraft{},
	}
}

// Slot returns the scratch payload for a step, nil when out of range.
func (d DraftData) Slot(step int) StepDraft {
	switch Step(step) {
	case StepWorkHistory:
		return d.Step1
	case StepEducation:
		return d.Step2
	case StepSkills:
		return d.Step3
	case StepMotivations:
		return d.Step4
	case StepConstraints:
		return d.Step5
	default:
		return nil
	}
}

func (d DraftData) withSlot(step int, slot StepDraft) DraftData {
	switch Step(step) {
	case StepWorkHistory:
		d.Step1 = slot
	case StepEducation:
		d.Step2 = slot
	case StepSkills:
		d.Step3 = slot
	case StepMotivations:
		d.Step4 = slot
	case StepConstraints:
		d.Step5 = slot
	}
	return d
}

// Merge shallow-merges a partial payload into the addressed step slot and
// returns the updated draft. Sibling slots pass through untouched; keys
// omitted from the partial payload keep their previous values; overlapping
// keys are last-write-wins. No validation happens here: this path exists so
// users can leave and resume a step mid-entry.
func Merge(d DraftData, step int, partial map[string]any) (DraftData, error) {
	if !Step(step).Valid() {
		return d, fmt.Errorf("invalid step number: %d", step)
	}

	old := d.Slot(step)
	merged := make(StepDraft, len(old)+len(partial))
	for k, v := range old {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return d.withSlot(step, merged), nil
}
