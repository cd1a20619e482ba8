package store

import (
	"time"
)

// DB is the persistence boundary for rounds and scan runs. The engine core
// never touches it; only the API and CLI layers do.
type DB interface {
	Close() error
	Migrate() error

	SaveRound(round *Round) error
	RevealRound(id, serverSeed string) error
	GetRound(id string) (*Round, error)
	ListRounds(limit, offset int) ([]Round, error)

	SaveRun(run *Run) error
	SaveHits(runID string, hits []Hit) error
	GetRun(id string) (*Run, error)
	GetHits(runID string, limit, offset int) ([]Hit, error)
}

// Round is one audited game round: the commitment is stored up front, the
// server seed only once the surrounding application reveals it at round end.
type Round struct {
	ID             string    `json:"id"`
	Game           string    `json:"game"`
	ServerSeedHash string    `json:"server_seed_hash"`
	ServerSeed     string    `json:"server_seed,omitempty"`
	ClientSeed     string    `json:"client_seed"`
	Nonce          uint64    `json:"nonce"`
	Metric         float64   `json:"metric"`
	Details        string    `json:"details,omitempty"` // JSON
	CreatedAt      time.Time `json:"created_at"`
}

// Run is a persisted scan run.
type Run struct {
	ID             string    `json:"id"`
	Game           string    `json:"game"`
	ServerSeed     string    `json:"server_seed"`
	ClientSeed     string    `json:"client_seed"`
	NonceStart     uint64    `json:"nonce_start"`
	NonceEnd       uint64    `json:"nonce_end"`
	TargetOp       string    `json:"target_op"`
	TargetVal      float64   `json:"target_val"`
	HitCount       int       `json:"hit_count"`
	TotalEvaluated uint64    `json:"total_evaluated"`
	CreatedAt      time.Time `json:"created_at"`
}

// Hit is a persisted scan hit.
type Hit struct {
	ID     int64   `json:"id"`
	RunID  string  `json:"run_id"`
	Nonce  uint64  `json:"nonce"`
	Metric float64 `json:"metric"`
}
