package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   any
		want AnswerKind
	}{
		{"text", KindString},
		{true, KindBoolean},
		{42, KindNumber},
		{float64(3.5), KindNumber},
		{[]any{"a"}, KindList},
		{[]string{"a"}, KindList},
		{map[string]any{"k": "v"}, KindString},
		{nil, KindString},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.in), "value %v", tt.in)
	}
}

func TestTag(t *testing.T) {
	v := Tag([]any{"autonomy", "impact"})
	assert.Equal(t, KindList, v.Kind)
	assert.Equal(t, []any{"autonomy", "impact"}, v.Value)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		completed int
		want      int
	}{
		{0, 0},
		{1, 20},
		{2, 40},
		{3, 60},
		{4, 80},
		{5, 100},
		{-1, 0},
		{7, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.completed), "completed=%d", tt.completed)
	}
}
