package wizard

import "math"

// AnswerKind tags a persisted answer value with an explicit type decided at
// write time, instead of relying on runtime type reflection at read time.
type AnswerKind string

const (
	KindString  AnswerKind = "string"
	KindNumber  AnswerKind = "number"
	KindBoolean AnswerKind = "boolean"
	KindList    AnswerKind = "list"
)

// AnswerValue is one answer field as persisted: the opaque value plus its
// caller-assigned kind tag.
type AnswerValue struct {
	Kind  AnswerKind `json:"kind"`
	Value any        `json:"value"`
}

// KindOf maps a decoded JSON value onto its answer kind. Objects and other
// unrecognized shapes fall back to KindString; they are stored re-encoded.
func KindOf(v any) AnswerKind {
	switch v.(type) {
	case string:
		return KindString
	case bool:
		return KindBoolean
	case int, int32, int64, float32, float64:
		return KindNumber
	case []any, []string, []int, []float64:
		return KindList
	default:
		return KindString
	}
}

// Tag wraps a raw value with its kind.
func Tag(v any) AnswerValue {
	return AnswerValue{Kind: KindOf(v), Value: v}
}

// Percentage derives the progress percentage from the number of completed
// steps, rounded to the nearest integer.
func Percentage(completed int) int {
	if completed <= 0 {
		return 0
	}
	if completed > StepCount {
		completed = StepCount
	}
	return int(math.Round(float64(completed) / float64(StepCount) * 100))
}
