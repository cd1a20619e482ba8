package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livegamesio/pfn/internal/engine"
	"github.com/livegamesio/pfn/internal/games"
	"github.com/livegamesio/pfn/internal/scan"
	"github.com/livegamesio/pfn/internal/store"
)

// VerifyRequest asks for a single-round re-evaluation.
type VerifyRequest struct {
	Game   string         `json:"game"`
	Seeds  games.Seeds    `json:"seeds"`
	Nonce  uint64         `json:"nonce"`
	Params map[string]any `json:"params,omitempty"`
}

// VerifyResponse carries the recomputed outcome plus the material needed
// for an independent check.
type VerifyResponse struct {
	Game           string           `json:"game"`
	Nonce          uint64           `json:"nonce"`
	ServerSeedHash string           `json:"server_seed_hash"`
	Result         games.GameResult `json:"result"`
}

// SeedHashRequest asks for the commitment of a server seed.
type SeedHashRequest struct {
	ServerSeed string `json:"server_seed"`
}

// SeedHashResponse is the published verification material.
type SeedHashResponse struct {
	ServerSeed     string `json:"server_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := map[string]any{"status": "ok", "database": s.db != nil}
	s.writeJSON(w, http.StatusOK, ready)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"games": games.ListGames()})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", nil)
		return
	}
	if req.Game == "" || req.Seeds.Server == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"game and seeds.server are required", nil)
		return
	}

	game, err := games.GetGame(req.Game)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error(), nil)
		return
	}

	result, err := game.Evaluate(req.Seeds, req.Nonce, req.Params)
	if err != nil {
		s.writeEvaluationError(w, r, err)
		return
	}

	hash := engine.DefaultCrypto.Sum256([]byte(req.Seeds.Server))
	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Game:           req.Game,
		Nonce:          req.Nonce,
		ServerSeedHash: hex.EncodeToString(hash[:]),
		Result:         result,
	})
}

// writeEvaluationError maps engine error types onto the envelope taxonomy.
func (s *Server) writeEvaluationError(w http.ResponseWriter, r *http.Request, err error) {
	var rangeErr *engine.RangeError
	var paramErr *engine.InvalidParameterError
	switch {
	case errors.As(err, &rangeErr):
		s.writeError(w, r, http.StatusBadRequest, ErrTypeRange, err.Error(), nil)
	case errors.As(err, &paramErr):
		s.writeError(w, r, http.StatusBadRequest, ErrTypeParameter, err.Error(),
			map[string]any{"param": paramErr.Param})
	default:
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scan.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", nil)
		return
	}
	if req.Game == "" || req.Seeds.Server == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"game and seeds.server are required", nil)
		return
	}

	result, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	runID := ""
	if s.db != nil {
		run := &store.Run{
			Game:           req.Game,
			ServerSeed:     req.Seeds.Server,
			ClientSeed:     req.Seeds.Client,
			NonceStart:     req.NonceStart,
			NonceEnd:       req.NonceEnd,
			TargetOp:       string(req.TargetOp),
			TargetVal:      req.TargetVal,
			HitCount:       len(result.Hits),
			TotalEvaluated: result.Summary.TotalEvaluated,
		}
		if err := s.db.SaveRun(run); err != nil {
			s.logger.Error().Err(err).Msg("scan run persistence failed")
		} else {
			runID = run.ID
			hits := make([]store.Hit, len(result.Hits))
			for i, h := range result.Hits {
				hits[i] = store.Hit{Nonce: h.Nonce, Metric: h.Metric}
			}
			if err := s.db.SaveHits(run.ID, hits); err != nil {
				s.logger.Error().Err(err).Str("run_id", run.ID).Msg("hit persistence failed")
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  runID,
		"hits":    result.Hits,
		"summary": result.Summary,
		"echo":    result.Echo,
	})
}

func (s *Server) handleSeedHash(w http.ResponseWriter, r *http.Request) {
	var req SeedHashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", nil)
		return
	}
	if req.ServerSeed == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "server_seed is required", nil)
		return
	}

	hash := engine.DefaultCrypto.Sum256([]byte(req.ServerSeed))
	s.writeJSON(w, http.StatusOK, SeedHashResponse{
		ServerSeed:     req.ServerSeed,
		ServerSeedHash: hex.EncodeToString(hash[:]),
	})
}

func (s *Server) handleSaveRound(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "persistence disabled", nil)
		return
	}
	var round store.Round
	if err := json.NewDecoder(r.Body).Decode(&round); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", nil)
		return
	}
	if round.Game == "" || round.ServerSeedHash == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"game and server_seed_hash are required", nil)
		return
	}
	if err := s.db.SaveRound(&round); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusCreated, round)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "persistence disabled", nil)
		return
	}
	round, err := s.db.GetRound(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "persistence disabled", nil)
		return
	}
	rounds, err := s.db.ListRounds(50, 0)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rounds": rounds})
}

func (s *Server) handleRevealRound(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "persistence disabled", nil)
		return
	}
	var req SeedHashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", nil)
		return
	}
	if req.ServerSeed == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "server_seed is required", nil)
		return
	}

	id := chi.URLParam(r, "id")
	round, err := s.db.GetRound(id)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error(), nil)
		return
	}

	// The revealed seed must hash back to the stored commitment.
	hash := engine.DefaultCrypto.Sum256([]byte(req.ServerSeed))
	if hex.EncodeToString(hash[:]) != round.ServerSeedHash {
		s.writeError(w, r, http.StatusConflict, ErrTypeValidation,
			"revealed seed does not match the stored commitment",
			map[string]any{"server_seed_hash": round.ServerSeedHash})
		return
	}

	if err := s.db.RevealRound(id, req.ServerSeed); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	round.ServerSeed = req.ServerSeed
	s.writeJSON(w, http.StatusOK, round)
}
