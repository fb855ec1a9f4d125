package wizard

import (
	"fmt"
	"strings"
)

// StepCount is the fixed number of wizard steps. The sequence is closed by
// design: work history, education, skills, motivations, constraints.
const StepCount = 5

type Step int

const (
	StepWorkHistory Step = 1
	StepEducation   Step = 2
	StepSkills      Step = 3
	StepMotivations Step = 4
	StepConstraints Step = 5
)

func (s Step) Valid() bool {
	return s >= 1 && s <= StepCount
}

// Section returns the canonical section name recorded on answers for this step.
func (s Step) Section() string {
	switch s {
	case StepWorkHistory:
		return "work_history"
	case StepEducation:
		return "education"
	case StepSkills:
		return "skills"
	case StepMotivations:
		return "motivations"
	case StepConstraints:
		return "constraints"
	default:
		return ""
	}
}

// Result is the outcome of a validation pass. Errors holds every field-level
// message, not just the first one, so callers can surface all of them at once.
type Result struct {
	Valid  bool
	Errors []string
}

func invalidStepResult(step int) Result {
	return Result{Valid: false, Errors: []string{fmt.Sprintf("invalid step number: %d", step)}}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return v
}

// stringListField collects the non-empty string entries of a list field.
// Non-list values and non-string entries count as absent.
func stringListField(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		if typed, ok := m[key].([]string); ok {
			raw = make([]any, len(typed))
			for i, s := range typed {
				raw[i] = s
			}
		} else {
			return nil
		}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// intField reads an integer-valued field. JSON decoding yields float64, so
// integral floats are accepted; fractional values are not.
func intField(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	return asInt(m[key])
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case float32:
		if n != float32(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func listField(m map[string]any, key string) ([]any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key].([]any)
	return v, ok
}
