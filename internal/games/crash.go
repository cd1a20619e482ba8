package games

// CrashGame evaluates the crash-out multiplier for a round. One multiplier
// is derived per nonce; the round advances its counter between rounds, not
// inside the evaluation.
type CrashGame struct{}

const (
	crashDefaultHouseEdge = 1.0 // percent
	crashDefaultMaxCap    = 1e6
)

// Spec returns metadata about the Crash game.
func (g *CrashGame) Spec() GameSpec {
	return GameSpec{
		ID:          "crash",
		Name:        "Crash",
		MetricLabel: "multiplier",
	}
}

// Evaluate computes the crash point for the given seeds and nonce.
// Params: "houseEdge" (>= 1 read as percent, default 1), "maxCap"
// (default 1e6).
func (g *CrashGame) Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error) {
	houseEdge := floatParam(params, "houseEdge", crashDefaultHouseEdge)
	maxCap := floatParam(params, "maxCap", crashDefaultMaxCap)

	gen, err := newGenerator(seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	multiplier, err := gen.Crash(houseEdge, maxCap)
	if err != nil {
		return GameResult{}, err
	}

	return GameResult{
		Metric:      multiplier,
		MetricLabel: "multiplier",
		Details: map[string]any{
			"house_edge": houseEdge,
			"max_cap":    maxCap,
			"multiplier": multiplier,
		},
	}, nil
}
