package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// PumpRound models one pump/balloon round: burstCount burst positions are
// chosen out of size slots by partial Fisher-Yates, and the balloon pops on
// the pump whose number equals 1 + the smallest selected position.
type PumpRound struct {
	size       int
	burstCount int
	edge       decimal.Decimal
	bursts     []int
	popPoint   int
}

// NewPumpRound selects the burst positions for a round, advancing the
// counter once per selection. size must be at least 2 and burstCount an
// integer in [1, size]; edge is the house fraction in [0, 1).
func NewPumpRound(g *Generator, burstCount, size int, edge float64) (*PumpRound, error) {
	if size < 2 {
		return nil, &InvalidParameterError{Param: "size", Reason: "must be at least 2"}
	}
	if burstCount < 1 || burstCount > size {
		return nil, &InvalidParameterError{Param: "burstCount", Reason: "must be in [1, size]"}
	}
	if edge < 0 || edge >= 1 || math.IsNaN(edge) {
		return nil, &InvalidParameterError{Param: "edge", Reason: "must be in [0, 1)"}
	}

	pool := make([]int, size)
	for i := range pool {
		pool[i] = i
	}

	bursts := make([]int, 0, burstCount)
	for len(bursts) < burstCount {
		i, err := g.NextInt(0, int64(len(pool)-1))
		if err != nil {
			return nil, err
		}
		bursts = append(bursts, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}

	pop := bursts[0]
	for _, b := range bursts[1:] {
		if b < pop {
			pop = b
		}
	}

	return &PumpRound{
		size:       size,
		burstCount: burstCount,
		edge:       decimal.NewFromFloat(edge),
		bursts:     bursts,
		popPoint:   pop + 1,
	}, nil
}

// PopPoint returns the 1-based pump number on which the balloon bursts.
// Always in [1, size].
func (p *PumpRound) PopPoint() int { return p.popPoint }

// Bursts returns the selected burst positions in selection order.
func (p *PumpRound) Bursts() []int {
	out := make([]int, len(p.bursts))
	copy(out, p.bursts)
	return out
}

// MaxSafePumps returns the largest number of pumps any round can survive.
func (p *PumpRound) MaxSafePumps() int { return p.size - p.burstCount }

// SurvivalProbability returns the probability that the balloon has not
// burst after k pumps, as the exact hypergeometric product
// prod_{t=0..k-1} (size-burstCount-t)/(size-t). 1 for k <= 0, 0 beyond the
// last survivable pump.
func (p *PumpRound) SurvivalProbability(k int) float64 {
	if k <= 0 {
		return 1
	}
	if k > p.size-p.burstCount {
		return 0
	}
	prob := 1.0
	for t := 0; t < k; t++ {
		prob *= float64(p.size-p.burstCount-t) / float64(p.size-t)
	}
	return prob
}

// PayoutMultiplier returns (1-edge)/survival(k) for 0 <= k < PopPoint, and 0
// otherwise. Computed in decimal fixed point and truncated at hundredths, so
// repeated divisions cannot accumulate binary-float drift.
func (p *PumpRound) PayoutMultiplier(k int) float64 {
	if k < 0 || k >= p.popPoint {
		return 0
	}
	m := decimal.NewFromInt(1).Sub(p.edge)
	for t := 0; t < k; t++ {
		m = m.Mul(decimal.NewFromInt(int64(p.size - t))).
			Div(decimal.NewFromInt(int64(p.size - p.burstCount - t)))
	}
	f, _ := m.Truncate(2).Float64()
	return f
}

// IsBurstAt reports whether pump number k bursts the balloon.
func (p *PumpRound) IsBurstAt(k int) bool { return k >= p.popPoint }

// CanContinueAt reports whether the balloon is still intact after k pumps.
func (p *PumpRound) CanContinueAt(k int) bool { return k < p.popPoint }

// WillBurstNext reports whether pump k+1 bursts the balloon.
func (p *PumpRound) WillBurstNext(k int) bool { return k+1 >= p.popPoint }
