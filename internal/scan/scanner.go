package scan

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/livegamesio/pfn/internal/games"
)

// TargetOp is a comparison operator for hit matching.
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

// Request describes a nonce-range scan: re-evaluate a game across
// [NonceStart, NonceEnd] and report every outcome matching the target.
type Request struct {
	Game       string         `json:"game"`
	Seeds      games.Seeds    `json:"seeds"`
	NonceStart uint64         `json:"nonce_start"`
	NonceEnd   uint64         `json:"nonce_end"`
	Params     map[string]any `json:"params,omitempty"`
	TargetOp   TargetOp       `json:"target_op"`
	TargetVal  float64        `json:"target_val"`
	TargetVal2 float64        `json:"target_val2,omitempty"` // between/outside upper bound
	Tolerance  float64        `json:"tolerance,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	TimeoutMs  int            `json:"timeout_ms,omitempty"`
}

// Hit is one matching nonce.
type Hit struct {
	Nonce  uint64  `json:"nonce"`
	Metric float64 `json:"metric"`
}

// Summary aggregates a completed scan.
type Summary struct {
	TotalEvaluated uint64  `json:"total_evaluated"`
	HitsFound      int     `json:"hits_found"`
	MinMetric      float64 `json:"min_metric"`
	MaxMetric      float64 `json:"max_metric"`
	MeanMetric     float64 `json:"mean_metric"`
	TimedOut       bool    `json:"timed_out,omitempty"`
}

// Result is the full scan outcome.
type Result struct {
	Hits    []Hit   `json:"hits"`
	Summary Summary `json:"summary"`
	Echo    Request `json:"echo"`
}

// Evaluator matches metrics against a target condition with tolerance.
type Evaluator struct {
	op        TargetOp
	val1      float64
	val2      float64
	tolerance float64
}

// NewEvaluator builds an evaluator for the given operator and bounds.
func NewEvaluator(op TargetOp, val1, val2, tolerance float64) *Evaluator {
	return &Evaluator{op: op, val1: val1, val2: val2, tolerance: tolerance}
}

// Matches reports whether metric satisfies the target condition.
func (e *Evaluator) Matches(metric float64) bool {
	switch e.op {
	case OpEqual:
		return math.Abs(metric-e.val1) <= e.tolerance
	case OpGreater:
		return metric > e.val1+e.tolerance
	case OpGreaterEqual:
		return metric >= e.val1-e.tolerance
	case OpLess:
		return metric < e.val1-e.tolerance
	case OpLessEqual:
		return metric <= e.val1+e.tolerance
	case OpBetween:
		return metric >= e.val1-e.tolerance && metric <= e.val2+e.tolerance
	case OpOutside:
		return metric < e.val1-e.tolerance || metric > e.val2+e.tolerance
	default:
		return false
	}
}

// Scanner re-evaluates nonce ranges across a bounded worker pool. Each
// worker owns independent seed state per nonce, so no locking is needed on
// the engine side.
type Scanner struct {
	workerCount int
}

// batchSize is the number of nonces per worker job.
const batchSize = 1024

// NewScanner creates a scanner sized to the available CPUs.
func NewScanner() *Scanner {
	return &Scanner{workerCount: runtime.NumCPU()}
}

// NewScannerWithWorkers creates a scanner with an explicit worker count.
func NewScannerWithWorkers(workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{workerCount: workers}
}

type job struct {
	start, end uint64 // inclusive
}

// Scan runs the request to completion, honoring context cancellation and
// the request timeout. Hits are returned sorted by nonce.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	if req.NonceEnd < req.NonceStart {
		return nil, fmt.Errorf("nonce_end %d precedes nonce_start %d", req.NonceEnd, req.NonceStart)
	}
	game, err := games.GetGame(req.Game)
	if err != nil {
		return nil, err
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	// Probe once so malformed params surface as an error instead of an
	// empty result; params fail identically on every nonce.
	if _, err := game.Evaluate(req.Seeds, req.NonceStart, req.Params); err != nil {
		return nil, fmt.Errorf("scan request invalid: %w", err)
	}

	evaluator := NewEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2, req.Tolerance)

	jobs := make(chan job, s.workerCount)
	hitCh := make(chan Hit, 256)

	var evaluated atomic.Uint64
	var minBits, maxBits atomic.Uint64
	var sumMu sync.Mutex
	var metricSum float64
	minBits.Store(math.Float64bits(math.Inf(1)))
	maxBits.Store(math.Float64bits(math.Inf(-1)))

	var wg sync.WaitGroup
	for w := 0; w < s.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				localSum := 0.0
				for nonce := j.start; ; nonce++ {
					if ctx.Err() != nil {
						break
					}
					result, err := game.Evaluate(req.Seeds, nonce, req.Params)
					if err != nil {
						// Bad params fail the same way on every nonce;
						// the first worker to see it stops the scan.
						break
					}
					evaluated.Add(1)
					localSum += result.Metric
					updateExtreme(&minBits, result.Metric, func(a, b float64) bool { return a < b })
					updateExtreme(&maxBits, result.Metric, func(a, b float64) bool { return a > b })
					if evaluator.Matches(result.Metric) {
						hitCh <- Hit{Nonce: nonce, Metric: result.Metric}
					}
					if nonce == j.end {
						break
					}
				}
				sumMu.Lock()
				metricSum += localSum
				sumMu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for start := req.NonceStart; ; {
			end := start + batchSize - 1
			if end > req.NonceEnd || end < start {
				end = req.NonceEnd
			}
			select {
			case jobs <- job{start: start, end: end}:
			case <-ctx.Done():
				return
			}
			if end == req.NonceEnd {
				return
			}
			start = end + 1
		}
	}()

	go func() {
		wg.Wait()
		close(hitCh)
	}()

	var hits []Hit
	for hit := range hitCh {
		if req.Limit <= 0 || len(hits) < req.Limit {
			hits = append(hits, hit)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Nonce < hits[j].Nonce })

	total := evaluated.Load()
	summary := Summary{
		TotalEvaluated: total,
		HitsFound:      len(hits),
		TimedOut:       ctx.Err() != nil,
	}
	if total > 0 {
		summary.MinMetric = math.Float64frombits(minBits.Load())
		summary.MaxMetric = math.Float64frombits(maxBits.Load())
		summary.MeanMetric = metricSum / float64(total)
	}

	return &Result{Hits: hits, Summary: summary, Echo: req}, nil
}

// updateExtreme CAS-loops a float64 extreme stored as bits.
func updateExtreme(slot *atomic.Uint64, v float64, better func(a, b float64) bool) {
	for {
		old := slot.Load()
		if !better(v, math.Float64frombits(old)) {
			return
		}
		if slot.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}
