package engine

import "math"

// WeightedOption is one (label, weight) entry for Pick. Options are an
// ordered sequence so the subtraction walk and its last-entry fallback are
// explicit and portable.
type WeightedOption struct {
	Label  string
	Weight float64
}

// Pick selects a label proportionally to its weight. Non-finite and
// non-positive weights are discarded; when nothing remains the second return
// is false, which is a normal empty result rather than an error. Floating
// drift that leaves the walk unfinished resolves to the last valid entry.
// Never advances the counter.
func (g *Generator) Pick(options []WeightedOption) (string, bool) {
	filtered := make([]WeightedOption, 0, len(options))
	var total float64
	for _, o := range options {
		if math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) || o.Weight <= 0 {
			continue
		}
		filtered = append(filtered, o)
		total += o.Weight
	}
	if len(filtered) == 0 {
		return "", false
	}

	t := g.Float() * total
	for _, o := range filtered {
		t -= o.Weight
		if t < 0 {
			return o.Label, true
		}
	}
	return filtered[len(filtered)-1].Label, true
}
