package games

import "github.com/livegamesio/pfn/internal/engine"

// PumpGame evaluates the pump/balloon game: burst positions are chosen by
// partial Fisher-Yates and the metric is the payout at the last safe pump.
type PumpGame struct{}

const (
	pumpDefaultBursts = 3
	pumpDefaultSize   = 25
	pumpDefaultEdge   = 0.01
)

// Spec returns metadata about the Pump game.
func (g *PumpGame) Spec() GameSpec {
	return GameSpec{
		ID:          "pump",
		Name:        "Pump",
		MetricLabel: "multiplier",
	}
}

// Evaluate selects the round's burst positions and reports the pop point
// and the payout a player cashing out just before the pop would receive.
// Params: "bursts" (default 3), "size" (default 25), "edge" (default 0.01).
func (g *PumpGame) Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error) {
	bursts := intParam(params, "bursts", pumpDefaultBursts)
	size := intParam(params, "size", pumpDefaultSize)
	edge := floatParam(params, "edge", pumpDefaultEdge)

	gen, err := newGenerator(seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	round, err := engine.NewPumpRound(gen, bursts, size, edge)
	if err != nil {
		return GameResult{}, err
	}

	safePumps := round.PopPoint() - 1
	payout := round.PayoutMultiplier(safePumps)

	return GameResult{
		Metric:      payout,
		MetricLabel: "multiplier",
		Details: map[string]any{
			"bursts":     round.Bursts(),
			"pop_point":  round.PopPoint(),
			"safe_pumps": safePumps,
			"max_safe":   round.MaxSafePumps(),
			"edge":       edge,
			"size":       size,
			"multiplier": payout,
		},
	}, nil
}
