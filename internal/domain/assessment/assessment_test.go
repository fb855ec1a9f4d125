package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusInProgress},
		{StatusInProgress, StatusSubmitted},
		{StatusSubmitted, StatusUnderReview},
		{StatusUnderReview, StatusCompleted},
		{StatusDraft, StatusArchived},
		{StatusInProgress, StatusArchived},
		{StatusSubmitted, StatusArchived},
		{StatusUnderReview, StatusArchived},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to Status }{
		{StatusDraft, StatusSubmitted},
		{StatusDraft, StatusCompleted},
		{StatusInProgress, StatusUnderReview},
		{StatusSubmitted, StatusCompleted},
		{StatusSubmitted, StatusInProgress},
		{StatusCompleted, StatusArchived},
		{StatusCompleted, StatusUnderReview},
		{StatusArchived, StatusArchived},
		{StatusArchived, StatusInProgress},
	}
	for _, tr := range denied {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusArchived.Terminal())
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"career", "skills", "comprehensive"} {
		typ, ok := ParseType(s)
		assert.True(t, ok)
		assert.Equal(t, Type(s), typ)
	}
	_, ok := ParseType("other")
	assert.False(t, ok)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Career Assessment", DefaultTitle(TypeCareer))
	assert.Equal(t, "Skills Assessment", DefaultTitle(TypeSkills))
	assert.Equal(t, "Comprehensive Assessment", DefaultTitle(TypeComprehensive))
}
