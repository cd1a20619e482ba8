package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements DB on a single SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path in WAL mode.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			server_seed_hash TEXT NOT NULL,
			server_seed TEXT NOT NULL DEFAULT '',
			client_seed TEXT NOT NULL,
			nonce INTEGER NOT NULL,
			metric REAL NOT NULL,
			details TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_game ON rounds(game)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_hash ON rounds(server_seed_hash)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			server_seed TEXT NOT NULL,
			client_seed TEXT NOT NULL,
			nonce_start INTEGER NOT NULL,
			nonce_end INTEGER NOT NULL,
			target_op TEXT NOT NULL,
			target_val REAL NOT NULL,
			hit_count INTEGER NOT NULL DEFAULT 0,
			total_evaluated INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			nonce INTEGER NOT NULL,
			metric REAL NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_run_id ON hits(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_nonce ON hits(run_id, nonce)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRound inserts a round, assigning an ID when missing.
func (s *SQLiteDB) SaveRound(round *Round) error {
	if round.ID == "" {
		round.ID = uuid.New().String()
	}
	_, err := s.db.Exec(
		`INSERT INTO rounds (id, game, server_seed_hash, server_seed, client_seed, nonce, metric, details)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		round.ID, round.Game, round.ServerSeedHash, round.ServerSeed,
		round.ClientSeed, round.Nonce, round.Metric, round.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// RevealRound records the revealed server seed for an audited round.
func (s *SQLiteDB) RevealRound(id, serverSeed string) error {
	result, err := s.db.Exec(`UPDATE rounds SET server_seed = ? WHERE id = ?`, serverSeed, id)
	if err != nil {
		return fmt.Errorf("failed to reveal round: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reveal round: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("round not found: %s", id)
	}
	return nil
}

// GetRound fetches a round by ID.
func (s *SQLiteDB) GetRound(id string) (*Round, error) {
	row := s.db.QueryRow(
		`SELECT id, game, server_seed_hash, server_seed, client_seed, nonce, metric, COALESCE(details, ''), created_at
		 FROM rounds WHERE id = ?`, id)

	var round Round
	err := row.Scan(&round.ID, &round.Game, &round.ServerSeedHash, &round.ServerSeed,
		&round.ClientSeed, &round.Nonce, &round.Metric, &round.Details, &round.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("round not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return &round, nil
}

// ListRounds returns rounds newest first.
func (s *SQLiteDB) ListRounds(limit, offset int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, game, server_seed_hash, server_seed, client_seed, nonce, metric, COALESCE(details, ''), created_at
		 FROM rounds ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var round Round
		if err := rows.Scan(&round.ID, &round.Game, &round.ServerSeedHash, &round.ServerSeed,
			&round.ClientSeed, &round.Nonce, &round.Metric, &round.Details, &round.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

// SaveRun inserts a scan run, assigning an ID when missing.
func (s *SQLiteDB) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, game, server_seed, client_seed, nonce_start, nonce_end, target_op, target_val, hit_count, total_evaluated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Game, run.ServerSeed, run.ClientSeed, run.NonceStart, run.NonceEnd,
		run.TargetOp, run.TargetVal, run.HitCount, run.TotalEvaluated,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// SaveHits bulk-inserts hits for a run inside one transaction.
func (s *SQLiteDB) SaveHits(runID string, hits []Hit) error {
	if len(hits) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO hits (run_id, nonce, metric) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, hit := range hits {
		if _, err := stmt.Exec(runID, hit.Nonce, hit.Metric); err != nil {
			return fmt.Errorf("failed to insert hit: %w", err)
		}
	}
	return tx.Commit()
}

// GetRun fetches a scan run by ID.
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, game, server_seed, client_seed, nonce_start, nonce_end, target_op, target_val, hit_count, total_evaluated, created_at
		 FROM runs WHERE id = ?`, id)

	var run Run
	err := row.Scan(&run.ID, &run.Game, &run.ServerSeed, &run.ClientSeed, &run.NonceStart,
		&run.NonceEnd, &run.TargetOp, &run.TargetVal, &run.HitCount, &run.TotalEvaluated, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// GetHits returns a run's hits ordered by nonce.
func (s *SQLiteDB) GetHits(runID string, limit, offset int) ([]Hit, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, run_id, nonce, metric FROM hits WHERE run_id = ? ORDER BY nonce LIMIT ? OFFSET ?`,
		runID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get hits: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		if err := rows.Scan(&hit.ID, &hit.RunID, &hit.Nonce, &hit.Metric); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
