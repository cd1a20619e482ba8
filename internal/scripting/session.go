package scripting

import (
	"context"
	"fmt"

	"github.com/livegamesio/pfn/internal/games"
)

// SessionConfig configures a deterministic strategy simulation.
type SessionConfig struct {
	Game       string
	Seeds      games.Seeds
	Params     map[string]any
	StartNonce uint64
	Balance    float64
}

// Session replays deterministic rounds of a game against a betting script.
// The script defines dobet() and drives the globals nextbet and target;
// before each dobet() call the host publishes lastResult, win, balance,
// profit and nonce. A round wins when the metric reaches the script's
// target, paying bet*(target-1).
type Session struct {
	cfg   SessionConfig
	game  games.Game
	vm    *VM
	stats *Statistics
	nonce uint64
}

// NewSession compiles the script and prepares a session.
func NewSession(cfg SessionConfig, script string) (*Session, error) {
	game, err := games.GetGame(cfg.Game)
	if err != nil {
		return nil, err
	}

	vm := NewVM()
	vm.Set("balance", cfg.Balance)
	vm.Set("nextbet", 0.0)
	vm.Set("target", 2.0)
	if err := vm.Execute(script); err != nil {
		return nil, err
	}

	return &Session{
		cfg:   cfg,
		game:  game,
		vm:    vm,
		stats: NewStatistics(cfg.Balance),
		nonce: cfg.StartNonce,
	}, nil
}

// Run simulates up to maxRounds rounds, stopping early when the script
// calls stop(), the balance cannot cover the next bet, or the context is
// cancelled. Outcomes are fully determined by seeds and nonces, so the same
// script and config always produce the same statistics.
func (s *Session) Run(ctx context.Context, maxRounds int) (*Statistics, error) {
	for round := 0; round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return s.stats, err
		}
		if s.vm.StopRequested() {
			break
		}

		bet := s.vm.Float("nextbet", 0)
		target := s.vm.Float("target", 2)
		if bet < 0 {
			return s.stats, fmt.Errorf("round %d: negative bet %v", round, bet)
		}
		if bet > s.stats.Balance {
			break
		}

		result, err := s.game.Evaluate(s.cfg.Seeds, s.nonce, s.cfg.Params)
		if err != nil {
			return s.stats, err
		}
		s.nonce++

		win := result.Metric >= target
		profit := -bet
		if win {
			profit = bet * (target - 1)
		}
		s.stats.Record(win, bet, profit)

		s.vm.Set("lastResult", result.Metric)
		s.vm.Set("win", win)
		s.vm.Set("balance", s.stats.Balance)
		s.vm.Set("profit", s.stats.Profit)
		s.vm.Set("nonce", s.nonce)
		if err := s.vm.CallDobet(); err != nil {
			return s.stats, err
		}
	}
	return s.stats, nil
}

// Statistics returns the session's running totals.
func (s *Session) Statistics() *Statistics { return s.stats }

// Logs returns the script's log output.
func (s *Session) Logs() []LogEntry { return s.vm.Logs() }
