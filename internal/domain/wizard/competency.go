package wizard

import (
	"fmt"
	"strings"
)

// DefaultCompetencyCategory is assigned when an entry carries no category.
const DefaultCompetencyCategory = "general"

// Competency is the normalized competency record persisted per
// (assessment, skill name) pair.
type Competency struct {
	SkillName           string
	Category            string
	SelfAssessmentLevel int
	SelfInterestLevel   int
	Context             string
}

// Competency entries arrive from two call sites with different field naming
// conventions. Both are accepted, first name wins when both are present.
var (
	skillNameKeys       = []string{"skillName", "skill_name"}
	assessmentLevelKeys = []string{"selfAssessmentLevel", "self_assessment_level"}
	interestLevelKeys   = []string{"selfInterestLevel", "self_interest_level"}
	categoryKeys        = []string{"category"}
	contextKeys         = []string{"context"}
)

// ValidateCompetencies checks an arbitrary competency list for standalone
// extraction flows. Deliberately looser than the skills-step schema rule:
// there is no minimum list size here, only per-entry shape checks. Every
// violation names the offending 1-based index.
func ValidateCompetencies(entries []map[string]any) Result {
	if len(entries) == 0 {
		return Result{Valid: false, Errors: []string{"at least one competency is required"}}
	}

	var errs []string
	for i, entry := range entries {
		n := i + 1
		if name, _ := resolveString(entry, skillNameKeys); strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Sprintf("competency %d: skill name is required", n))
		}
		if lvl, ok := resolveInt(entry, assessmentLevelKeys); !ok || lvl < 1 || lvl > 4 {
			errs = append(errs, fmt.Sprintf("competency %d: self assessment level must be an integer between 1 and 4", n))
		}
		if lvl, ok := resolveInt(entry, interestLevelKeys); !ok || lvl < 1 || lvl > 10 {
			errs = append(errs, fmt.Sprintf("competency %d: self interest level must be an integer between 1 and 10", n))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// CompetencyFromMap normalizes one raw entry into a Competency. Returns false
// when no skill name resolves under either naming convention.
func CompetencyFromMap(entry map[string]any) (Competency, bool) {
	name, _ := resolveString(entry, skillNameKeys)
	name = strings.TrimSpace(name)
	if name == "" {
		return Competency{}, false
	}

	c := Competency{SkillName: name, Category: DefaultCompetencyCategory}
	if cat, ok := resolveString(entry, categoryKeys); ok && strings.TrimSpace(cat) != "" {
		c.Category = strings.TrimSpace(cat)
	}
	if ctx, ok := resolveString(entry, contextKeys); ok {
		c.Context = ctx
	}
	c.SelfAssessmentLevel, _ = resolveInt(entry, assessmentLevelKeys)
	c.SelfInterestLevel, _ = resolveInt(entry, interestLevelKeys)
	return c, true
}

// ExtractCompetencies pulls the competency list out of the skills slot of a
// draft. Entries without a resolvable skill name are skipped.
func ExtractCompetencies(d DraftData) []Competency {
	slot := d.Slot(int(StepSkills))
	if slot == nil {
		return nil
	}
	raw, ok := listField(slot, "competencies")
	if !ok {
		return nil
	}

	out := make([]Competency, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c, ok := CompetencyFromMap(m)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func resolveString(m map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if _, present := m[k]; !present {
			continue
		}
		s, ok := m[k].(string)
		return s, ok
	}
	return "", false
}

func resolveInt(m map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		if _, present := m[k]; !present {
			continue
		}
		return asInt(m[k])
	}
	return 0, false
}
