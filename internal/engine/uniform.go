package engine

import "math"

// Float converts the current digest into a float in [0, 1). The first 7
// digest bytes give 56 bits; the top 52 exactly fill a double-precision
// mantissa. Never advances the counter.
func (g *Generator) Float() float64 {
	d := g.Digest()

	var v uint64
	for _, b := range d[:7] {
		v = v<<8 | uint64(b)
	}
	m := v >> 4 // 56 -> 52 bits

	f := float64(m) / (1 << 52)
	if f >= 1 {
		f = math.Nextafter(1, 0)
	}
	return f
}

// NextFloat advances the counter once, then returns Float.
func (g *Generator) NextFloat() float64 {
	g.state.Advance()
	return g.Float()
}

// Int returns an unbiased integer in [min, max] via rejection sampling over
// a 32-bit draw. A rejected draw advances the counter and redraws; this is
// the only path through which Int touches counter state. The expected number
// of redraws is below 2 and the loop terminates for every accepted range.
//
// Ranges wider than 2^32 cannot be served by a 32-bit draw and are reported
// as a RangeError rather than risking a loop that can never accept.
func (g *Generator) Int(min, max int64) (int64, error) {
	if min > max {
		return 0, &RangeError{Min: float64(min), Max: float64(max)}
	}

	// Two's-complement subtraction gives the correct unsigned width even
	// when max-min overflows int64.
	span := uint64(max) - uint64(min) + 1
	if span == 0 || span > 1<<32 {
		return 0, &RangeError{Min: float64(min), Max: float64(max), Reason: "range wider than 32 bits"}
	}

	limit := (uint64(1) << 32) / span * span
	for {
		x := uint64(g.Float() * (1 << 32))
		if x >= limit {
			g.state.Advance()
			continue
		}
		return min + int64(x%span), nil
	}
}

// NextInt advances the counter once, then delegates to Int. Rejection
// redraws inside Int may advance further; the deliberate advance is always
// exactly one.
func (g *Generator) NextInt(min, max int64) (int64, error) {
	g.state.Advance()
	return g.Int(min, max)
}

// RoundedFloat maps the current digest onto [min, max] and rounds to the
// given number of decimal digits using round-half-away-from-zero. Never
// advances the counter.
func (g *Generator) RoundedFloat(min, max float64, precision int) (float64, error) {
	if min > max {
		return 0, &RangeError{Min: min, Max: max}
	}
	v := g.Float()*(max-min) + min
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale, nil
}

// NextRoundedFloat advances the counter once, then returns RoundedFloat.
func (g *Generator) NextRoundedFloat(min, max float64, precision int) (float64, error) {
	g.state.Advance()
	return g.RoundedFloat(min, max, precision)
}
