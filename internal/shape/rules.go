// Package shape coerces loosely shaped LLM output into the fixed shapes the
// store persists. Rules never fail: malformed input degrades to defaults.
package shape

// Rule maps a value to one that satisfies a target shape.
// A nil input means the value was absent. Every rule is idempotent.
type Rule func(v any) any

// Passthrough returns its input unchanged.
func Passthrough(v any) any {
	return v
}

// Sequence keeps slices, mapping each element through elem when elem is non-nil.
// Anything that is not a slice becomes an empty slice.
func Sequence(elem Rule) Rule {
	return func(v any) any {
		items, ok := v.([]any)
		if !ok {
			return []any{}
		}
		if elem == nil {
			return items
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = elem(item)
		}
		return out
	}
}

// ConversationLog keeps a slice of turns as is and drops anything else.
var ConversationLog Rule = Sequence(nil)

// CareerPathEntry wraps a bare title string into a career path record.
// Records and other values pass through unchanged; missing fields on a
// record are not filled in.
func CareerPathEntry(v any) any {
	title, ok := v.(string)
	if !ok {
		return v
	}
	return map[string]any{
		"title":           title,
		"description":     "Career path: " + title,
		"requirements":    []any{},
		"growthPotential": "High",
		"salaryRange":     "Competitive",
		"companies":       []any{},
	}
}

// LearningRoadmap supplies the empty roadmap skeleton when the roadmap is absent.
// A present roadmap is used as is.
func LearningRoadmap(v any) any {
	if v != nil {
		return v
	}
	return map[string]any{
		"immediate": []any{},
		"shortTerm": []any{},
		"longTerm":  []any{},
		"resources": map[string]any{
			"courses":        []any{},
			"projects":       []any{},
			"certifications": []any{},
			"networking":     []any{},
		},
	}
}

// Record applies field rules to a mapping. Non-mapping input is treated as
// an empty mapping. Fields without a rule are copied unchanged, and a rule
// returning nil for an absent field leaves it absent.
func Record(fields map[string]Rule) Rule {
	return func(v any) any {
		in, _ := v.(map[string]any)
		out := make(map[string]any, len(in)+len(fields))
		for k, val := range in {
			out[k] = val
		}
		for name, rule := range fields {
			val, present := in[name]
			if !present {
				val = nil
			}
			if res := rule(val); res != nil || present {
				out[name] = res
			}
		}
		return out
	}
}
