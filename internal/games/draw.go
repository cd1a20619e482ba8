package games

// DrawGame evaluates a keno-style unique draw: drawCount distinct numbers
// out of [1, poolSize]. The metric is the number of player picks that hit.
type DrawGame struct{}

const (
	drawDefaultPool  = 40
	drawDefaultCount = 10
)

// Spec returns metadata about the Draw game.
func (g *DrawGame) Spec() GameSpec {
	return GameSpec{
		ID:          "draw",
		Name:        "Draw",
		MetricLabel: "hits",
	}
}

// Evaluate draws the round's numbers and counts hits against the player's
// picks. Params: "pool" (default 40), "count" (default 10), "picks" as a
// list of numbers. Without picks the metric is 0 and the draw itself is
// reported in the details.
func (g *DrawGame) Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error) {
	pool := intParam(params, "pool", drawDefaultPool)
	count := intParam(params, "count", drawDefaultCount)
	picks := intListParam(params, "picks")

	gen, err := newGenerator(seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	draws, err := gen.SampleUnique(1, int64(pool), count)
	if err != nil {
		return GameResult{}, err
	}

	drawn := make(map[int64]bool, len(draws))
	for _, d := range draws {
		drawn[d] = true
	}
	hits := 0
	for _, p := range picks {
		if drawn[int64(p)] {
			hits++
		}
	}

	return GameResult{
		Metric:      float64(hits),
		MetricLabel: "hits",
		Details: map[string]any{
			"draws": draws,
			"picks": picks,
			"hits":  hits,
			"pool":  pool,
		},
	}, nil
}

// intListParam reads a list of numbers, accepting JSON float64 entries.
func intListParam(params map[string]any, key string) []int {
	if params == nil {
		return nil
	}
	raw, ok := params[key].([]any)
	if !ok {
		if ints, ok := params[key].([]int); ok {
			return ints
		}
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	return out
}
