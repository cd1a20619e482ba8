package engine

import "math"

// Crash computes a crash-game multiplier from the current digest. A
// houseEdge of 1 or more is read as a percentage and divided by 100;
// smaller values are taken as a fraction directly. The raw multiplier
// (1-edge)/(1-r) is floored at hundredths and clamped to [1, maxCap].
// Never advances the counter; callers choose when to advance, typically
// once per round.
func (g *Generator) Crash(houseEdge, maxCap float64) (float64, error) {
	edge := houseEdge
	if edge >= 1 {
		edge /= 100
	}
	if edge < 0 || edge > 1 || math.IsNaN(edge) {
		return 0, &InvalidParameterError{Param: "houseEdge", Reason: "must normalize to [0, 1]"}
	}
	if maxCap < 1 || math.IsNaN(maxCap) {
		return 0, &InvalidParameterError{Param: "maxCap", Reason: "must be at least 1"}
	}

	r := g.Float()
	if r >= 1 {
		r = math.Nextafter(1, 0)
	}

	raw := (1 - edge) / (1 - r)
	m := math.Floor(raw*100) / 100
	if m < 1 {
		m = 1
	}
	if m > maxCap {
		m = maxCap
	}
	return m, nil
}

// NextCrash advances the counter once, then returns Crash.
func (g *Generator) NextCrash(houseEdge, maxCap float64) (float64, error) {
	g.state.Advance()
	return g.Crash(houseEdge, maxCap)
}
