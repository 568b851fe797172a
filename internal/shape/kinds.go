package shape

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/rizzrioo06/careermate/internal/types"
)

var kindRules = map[types.RecordKind]Rule{
	types.KindGuidance: Record(map[string]Rule{
		"careerPaths":     Sequence(CareerPathEntry),
		"learningRoadmap": LearningRoadmap,
		"skillGaps":       Sequence(nil),
	}),
	types.KindInterview: Record(map[string]Rule{
		"questions":    Sequence(nil),
		"conversation": ConversationLog,
		"tips":         Sequence(nil),
	}),
	types.KindJobs: Record(map[string]Rule{
		"jobSuggestions":   Sequence(nil),
		"searchStrategies": Sequence(nil),
	}),
	types.KindDiscovery: Record(map[string]Rule{
		"suggestedCareers": Sequence(CareerPathEntry),
		"insights":         Sequence(nil),
		"nextSteps":        Sequence(nil),
	}),
	types.KindStories: Record(map[string]Rule{
		"stories": Sequence(nil),
	}),
}

// ForKind returns the record rule for a kind, or Record(nil) for unknown kinds.
func ForKind(kind types.RecordKind) Rule {
	if rule, ok := kindRules[kind]; ok {
		return rule
	}
	return Record(nil)
}

// Normalize coerces content into the persisted shape for kind.
func Normalize(kind types.RecordKind, content map[string]any) map[string]any {
	out, _ := ForKind(kind)(content).(map[string]any)
	return out
}

// Action describes how a value was repaired.
type Action string

const (
	// ActionDefaulted means an absent value was filled with its default.
	ActionDefaulted Action = "defaulted"
	// ActionReplaced means a wrong-typed value was replaced wholesale.
	ActionReplaced Action = "replaced"
	// ActionCoerced means a value was converted into the target shape.
	ActionCoerced Action = "coerced"
)

// Repair is one change made during normalization.
type Repair struct {
	Path   string
	Action Action
}

// Report lists the repairs made by NormalizeWithReport.
type Report struct {
	Kind    types.RecordKind
	Repairs []Repair
}

// Clean reports whether normalization changed nothing.
func (r Report) Clean() bool {
	return len(r.Repairs) == 0
}

func (r Report) String() string {
	if r.Clean() {
		return fmt.Sprintf("%s: no repairs", r.Kind)
	}
	return fmt.Sprintf("%s: %d repairs %v", r.Kind, len(r.Repairs), r.Repairs)
}

// NormalizeWithReport is Normalize plus a list of the repairs it made.
// The report never causes a rejection; callers decide what to do with it.
func NormalizeWithReport(kind types.RecordKind, content map[string]any) (map[string]any, Report) {
	out := Normalize(kind, content)
	report := Report{Kind: kind}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		before, present := content[k]
		if !present {
			report.Repairs = append(report.Repairs, Repair{Path: k, Action: ActionDefaulted})
			continue
		}
		report.Repairs = append(report.Repairs, diff(k, before, out[k])...)
	}
	return out, report
}

func diff(path string, before, after any) []Repair {
	if reflect.DeepEqual(before, after) {
		return nil
	}
	if before == nil {
		return []Repair{{Path: path, Action: ActionDefaulted}}
	}

	b, bok := before.([]any)
	a, aok := after.([]any)
	if bok && aok && len(a) == len(b) {
		var repairs []Repair
		for i := range b {
			repairs = append(repairs, diff(fmt.Sprintf("%s[%d]", path, i), b[i], a[i])...)
		}
		return repairs
	}

	if reflect.TypeOf(before) != reflect.TypeOf(after) && !aok {
		return []Repair{{Path: path, Action: ActionCoerced}}
	}
	return []Repair{{Path: path, Action: ActionReplaced}}
}
