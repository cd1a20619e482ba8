package games

// DiceGame evaluates a 0.00-100.00 roll at hundredths precision.
type DiceGame struct{}

// Spec returns metadata about the Dice game.
func (g *DiceGame) Spec() GameSpec {
	return GameSpec{
		ID:          "dice",
		Name:        "Dice",
		MetricLabel: "roll",
	}
}

// Evaluate computes the roll for the given seeds and nonce.
func (g *DiceGame) Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error) {
	gen, err := newGenerator(seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	roll, err := gen.RoundedFloat(0, 100, 2)
	if err != nil {
		return GameResult{}, err
	}

	return GameResult{
		Metric:      roll,
		MetricLabel: "roll",
		Details: map[string]any{
			"roll": roll,
		},
	}, nil
}
