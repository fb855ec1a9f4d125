package wizard

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSkillsData(n int) map[string]any {
	comps := make([]any, 0, n)
	for i := 0; i < n; i++ {
		comps = append(comps, map[string]any{
			"skillName":           fmt.Sprintf("Skill %d", i+1),
			"selfAssessmentLevel": 3,
			"selfInterestLevel":   7,
		})
	}
	return map[string]any{"competencies": comps}
}

func TestValidateStep_WorkHistory(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		valid   bool
		wantErr string
	}{
		{
			name: "valid",
			data: map[string]any{
				"recentJob":         "Senior project manager at a logistics firm",
				"previousPositions": "Five years as team lead, two as analyst",
			},
			valid: true,
		},
		{
			name:    "recent job too short",
			data:    map[string]any{"recentJob": "short", "previousPositions": "Five years as team lead"},
			wantErr: "recentJob must be at least 10 characters",
		},
		{
			name: "recent job too long",
			data: map[string]any{
				"recentJob":         strings.Repeat("x", 1001),
				"previousPositions": "Five years as team lead",
			},
			wantErr: "recentJob must be at most 1000 characters",
		},
		{
			name:    "previous positions too short",
			data:    map[string]any{"recentJob": "Senior project manager", "previousPositions": "none"},
			wantErr: "previousPositions must be at least 10 characters",
		},
		{
			name:    "whitespace does not count toward minimum",
			data:    map[string]any{"recentJob": "   a        ", "previousPositions": "Five years as team lead"},
			wantErr: "recentJob must be at least 10 characters",
		},
		{
			name:    "wrong field type treated as missing",
			data:    map[string]any{"recentJob": 42, "previousPositions": "Five years as team lead"},
			wantErr: "recentJob must be at least 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateStep(1, tt.data)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.wantErr != "" {
				assert.Contains(t, res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidateStep_WorkHistory_CountsCharactersNotBytes(t *testing.T) {
	// 5 accented characters are 10 bytes; still under the 10-character minimum.
	res := ValidateStep(1, map[string]any{
		"recentJob":         "ééééé",
		"previousPositions": "Cinq ans comme cheffe d'équipe",
	})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "recentJob must be at least 10 characters")

	// Exactly 1000 accented characters exceed 1000 bytes but stay in bounds.
	res = ValidateStep(1, map[string]any{
		"recentJob":         strings.Repeat("é", 1000),
		"previousPositions": "Cinq ans comme cheffe d'équipe",
	})
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidateStep_Education(t *testing.T) {
	for _, lvl := range EducationLevels {
		res := ValidateStep(2, map[string]any{"highestLevel": lvl})
		assert.True(t, res.Valid, "level %q should be accepted", lvl)
	}

	res := ValidateStep(2, map[string]any{"highestLevel": "phd"})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "highestLevel must be one of")

	res = ValidateStep(2, map[string]any{})
	require.False(t, res.Valid)
	assert.Equal(t, []string{"highestLevel is required"}, res.Errors)
}

func TestValidateStep_Skills(t *testing.T) {
	res := ValidateStep(3, validSkillsData(5))
	assert.True(t, res.Valid)

	res = ValidateStep(3, validSkillsData(4))
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "at least 5 competencies are required (got 4)")

	res = ValidateStep(3, map[string]any{})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "at least 5 competencies are required (got 0)")
}

func TestValidateStep_Skills_EntryErrors(t *testing.T) {
	data := validSkillsData(5)
	comps := data["competencies"].([]any)
	comps[2] = map[string]any{
		"skillName":           "X",
		"selfAssessmentLevel": 9,
		"selfInterestLevel":   "high",
	}

	res := ValidateStep(3, data)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "competency 3: skillName must be at least 2 characters")
	assert.Contains(t, res.Errors, "competency 3: selfAssessmentLevel must be an integer between 1 and 4")
	assert.Contains(t, res.Errors, "competency 3: selfInterestLevel must be an integer between 1 and 10")
}

func TestValidateStep_Skills_SkillNameCountsCharacters(t *testing.T) {
	data := validSkillsData(5)
	comps := data["competencies"].([]any)
	comps[0] = map[string]any{
		"skillName":           "é",
		"selfAssessmentLevel": 3,
		"selfInterestLevel":   7,
	}
	comps[1] = map[string]any{
		"skillName":           "éé",
		"selfAssessmentLevel": 3,
		"selfInterestLevel":   7,
	}

	res := ValidateStep(3, data)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "competency 1: skillName must be at least 2 characters")
	assert.NotContains(t, res.Errors, "competency 2: skillName must be at least 2 characters")
}

func TestValidateStep_Skills_AcceptsJSONNumbers(t *testing.T) {
	// Decoded JSON bodies carry numbers as float64.
	data := map[string]any{"competencies": []any{
		map[string]any{"skillName": "Go", "selfAssessmentLevel": float64(4), "selfInterestLevel": float64(10)},
		map[string]any{"skillName": "SQL", "selfAssessmentLevel": float64(2), "selfInterestLevel": float64(5)},
		map[string]any{"skillName": "Ops", "selfAssessmentLevel": float64(1), "selfInterestLevel": float64(1)},
		map[string]any{"skillName": "Web", "selfAssessmentLevel": float64(3), "selfInterestLevel": float64(6)},
		map[string]any{"skillName": "API", "selfAssessmentLevel": float64(2), "selfInterestLevel": float64(8)},
	}}

	res := ValidateStep(3, data)
	assert.True(t, res.Valid, "errors: %v", res.Errors)

	bad := map[string]any{"competencies": []any{
		map[string]any{"skillName": "Go", "selfAssessmentLevel": 2.5, "selfInterestLevel": 5},
	}}
	res = ValidateStep(3, bad)
	assert.Contains(t, res.Errors, "competency 1: selfAssessmentLevel must be an integer between 1 and 4")
}

func TestValidateStep_Motivations(t *testing.T) {
	valid := map[string]any{
		"topValues":             []any{"autonomy", "impact"},
		"careerGoals":           []any{"lead a team"},
		"motivationDescription": "I want to move toward coordination roles.",
	}
	res := ValidateStep(4, valid)
	assert.True(t, res.Valid)

	res = ValidateStep(4, map[string]any{"motivationDescription": "I want to move toward coordination roles."})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "at least one top value is required")
	assert.Contains(t, res.Errors, "at least one career goal is required")

	res = ValidateStep(4, map[string]any{
		"topValues":             []any{"autonomy"},
		"careerGoals":           []any{"lead"},
		"motivationDescription": "too short",
	})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "motivationDescription must be at least 20 characters")
}

func TestValidateStep_Motivations_SkipsNonStringListItems(t *testing.T) {
	res := ValidateStep(4, map[string]any{
		"topValues":             []any{42, "", "   "},
		"careerGoals":           []any{"lead a team"},
		"motivationDescription": "I want to move toward coordination roles.",
	})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "at least one top value is required")
}

func TestValidateStep_Constraints_AlwaysValid(t *testing.T) {
	assert.True(t, ValidateStep(5, map[string]any{}).Valid)
	assert.True(t, ValidateStep(5, nil).Valid)
	assert.True(t, ValidateStep(5, map[string]any{"salaryExpectations": "35-40k"}).Valid)
}

func TestValidateStep_InvalidStepNumber(t *testing.T) {
	for _, step := range []int{0, 6, -1, 100} {
		res := ValidateStep(step, map[string]any{})
		require.False(t, res.Valid, "step %d", step)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "invalid step number")
	}
}
