package games

import (
	"fmt"

	"github.com/livegamesio/pfn/internal/engine"
)

// WheelGame evaluates a weighted wheel spin: segments are an ordered list of
// (label, multiplier, weight) entries and the winning segment is chosen
// proportionally to weight.
type WheelGame struct{}

// wheelSegment is one wheel sector.
type wheelSegment struct {
	Label      string
	Multiplier float64
	Weight     float64
}

// Default wheel: a low-risk ten-sector layout.
var wheelDefaultSegments = []wheelSegment{
	{Label: "1.5x", Multiplier: 1.5, Weight: 1},
	{Label: "1.2x", Multiplier: 1.2, Weight: 7},
	{Label: "0x", Multiplier: 0, Weight: 2},
}

// Spec returns metadata about the Wheel game.
func (g *WheelGame) Spec() GameSpec {
	return GameSpec{
		ID:          "wheel",
		Name:        "Wheel",
		MetricLabel: "multiplier",
	}
}

// Evaluate spins the wheel for the given seeds and nonce. Params:
// "segments" as an ordered list of {label, multiplier, weight} objects;
// omitted segments fall back to the default layout. A segment list with no
// valid weight produces a zero-metric no-selection result, not an error.
func (g *WheelGame) Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error) {
	segments, err := wheelSegments(params)
	if err != nil {
		return GameResult{}, err
	}

	gen, err := newGenerator(seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	options := make([]engine.WeightedOption, len(segments))
	byLabel := make(map[string]wheelSegment, len(segments))
	for i, s := range segments {
		options[i] = engine.WeightedOption{Label: s.Label, Weight: s.Weight}
		byLabel[s.Label] = s
	}

	label, ok := gen.Pick(options)
	if !ok {
		return GameResult{
			Metric:      0,
			MetricLabel: "multiplier",
			Details:     map[string]any{"no_selection": true},
		}, nil
	}

	won := byLabel[label]
	return GameResult{
		Metric:      won.Multiplier,
		MetricLabel: "multiplier",
		Details: map[string]any{
			"segment":    label,
			"multiplier": won.Multiplier,
		},
	}, nil
}

// wheelSegments parses the "segments" param, preserving order.
func wheelSegments(params map[string]any) ([]wheelSegment, error) {
	if params == nil {
		return wheelDefaultSegments, nil
	}
	raw, ok := params["segments"]
	if !ok {
		return wheelDefaultSegments, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("wheel segments must be a list, got %T", raw)
	}

	segments := make([]wheelSegment, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("wheel segment %d must be an object, got %T", i, item)
		}
		label, _ := entry["label"].(string)
		if label == "" {
			return nil, fmt.Errorf("wheel segment %d is missing a label", i)
		}
		segments = append(segments, wheelSegment{
			Label:      label,
			Multiplier: floatParam(entry, "multiplier", 0),
			Weight:     floatParam(entry, "weight", 0),
		})
	}
	return segments, nil
}
