package games

import (
	"fmt"
	"sort"

	"github.com/livegamesio/pfn/internal/engine"
)

// Seeds is the seed pair a round is evaluated under. Both are ASCII strings;
// the server seed is never hex-decoded.
type Seeds struct {
	Server string `json:"server"`
	Client string `json:"client"`
}

// GameResult is the outcome of evaluating a game at one nonce.
type GameResult struct {
	Metric      float64        `json:"metric"`
	MetricLabel string         `json:"metric_label"`
	Details     map[string]any `json:"details,omitempty"`
}

// GameSpec is metadata describing a game.
type GameSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MetricLabel string `json:"metric_label"`
}

// Game evaluates provably fair outcomes for a given seed pair and nonce.
type Game interface {
	Spec() GameSpec
	Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error)
}

// newGenerator builds a fresh engine generator pinned to the given nonce.
// Each evaluation owns its own SeedState, so concurrent evaluations never
// share mutable state.
func newGenerator(seeds Seeds, nonce uint64) (*engine.Generator, error) {
	state, err := engine.NewSeedState(engine.SeedConfig{
		ServerSeed: seeds.Server,
		ClientSeed: seeds.Client,
		Nonce:      nonce,
	})
	if err != nil {
		return nil, err
	}
	return engine.New(state)
}

var registry = map[string]Game{
	"crash": &CrashGame{},
	"pump":  &PumpGame{},
	"dice":  &DiceGame{},
	"wheel": &WheelGame{},
	"draw":  &DrawGame{},
}

// GetGame returns the game registered under id.
func GetGame(id string) (Game, error) {
	game, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", id)
	}
	return game, nil
}

// ListGames returns the registered game specs sorted by ID.
func ListGames() []GameSpec {
	specs := make([]GameSpec, 0, len(registry))
	for _, game := range registry {
		specs = append(specs, game.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// floatParam reads a numeric param, accepting both float64 (JSON) and int.
func floatParam(params map[string]any, key string, def float64) float64 {
	if params == nil {
		return def
	}
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// intParam reads an integer param, accepting both float64 (JSON) and int.
func intParam(params map[string]any, key string, def int) int {
	if params == nil {
		return def
	}
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}
