package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// CounterMode selects which counter field a SeedState advances. The mode is
// fixed at construction and never changes afterwards.
type CounterMode int

const (
	// CounterNonce advances the nonce on every Advance call (default).
	CounterNonce CounterMode = iota
	// CounterIndex keeps the nonce fixed and advances a separate index.
	CounterIndex
)

// SeedConfig carries the construction parameters for a SeedState.
type SeedConfig struct {
	// ClientSeed is the player-supplied seed. ClientSeeds takes precedence
	// when non-empty; its entries are joined with "|" in given order. When
	// both are empty a client seed is generated lazily on first use.
	ClientSeed  string
	ClientSeeds []string

	// ServerSeed is the operator secret. When empty, 64 random hex
	// characters are generated.
	ServerSeed string

	// Mode picks the advancing counter. Nonce is the initial nonce value in
	// both modes; Index is the initial index and only meaningful in
	// CounterIndex mode.
	Mode  CounterMode
	Nonce uint64
	Index uint64

	// Crypto overrides the hashing primitives. Nil means crypto/sha256 and
	// crypto/hmac.
	Crypto Crypto
}

// SeedState holds the seed pair, the published hash commitment, and the
// advancing counter. A SeedState is owned by a single round or session and
// must not be shared across concurrent callers.
type SeedState struct {
	serverSeed     string
	serverSeedHash string
	clientSeed     string

	mode  CounterMode
	nonce uint64
	index uint64

	crypto Crypto
}

// NewSeedState builds a SeedState and computes the SHA-256 commitment of the
// server seed. The commitment is available before any digest is consumed so
// it can be published to the player ahead of play.
func NewSeedState(cfg SeedConfig) (*SeedState, error) {
	crypto := cfg.Crypto
	if crypto == nil {
		crypto = DefaultCrypto
	}

	serverSeed := cfg.ServerSeed
	if serverSeed == "" {
		generated, err := randomHex(64)
		if err != nil {
			return nil, &ConfigurationError{Reason: "server seed generation failed: " + err.Error()}
		}
		serverSeed = generated
	}

	clientSeed := cfg.ClientSeed
	if len(cfg.ClientSeeds) > 0 {
		clientSeed = strings.Join(cfg.ClientSeeds, "|")
	}

	hash := crypto.Sum256([]byte(serverSeed))

	return &SeedState{
		serverSeed:     serverSeed,
		serverSeedHash: hex.EncodeToString(hash[:]),
		clientSeed:     clientSeed,
		mode:           cfg.Mode,
		nonce:          cfg.Nonce,
		index:          cfg.Index,
		crypto:         crypto,
	}, nil
}

// ServerSeed returns the raw server seed. Callers reveal it only at round
// end; until then only the hash commitment is published.
func (s *SeedState) ServerSeed() string { return s.serverSeed }

// ServerSeedHash returns the hex SHA-256 commitment of the server seed.
func (s *SeedState) ServerSeedHash() string { return s.serverSeedHash }

// ClientSeed returns the client seed, which may be empty until first use.
func (s *SeedState) ClientSeed() string { return s.clientSeed }

// SetClientSeed replaces the client seed.
func (s *SeedState) SetClientSeed(seed string) { s.clientSeed = seed }

// Mode returns the active counter mode.
func (s *SeedState) Mode() CounterMode { return s.mode }

// Nonce returns the current nonce value.
func (s *SeedState) Nonce() uint64 { return s.nonce }

// Index returns the current index value. Only meaningful in index mode.
func (s *SeedState) Index() uint64 { return s.index }

// Advance increments whichever counter is active and returns the new value.
// This is the only mutator of counter state; peek operations never touch it.
func (s *SeedState) Advance() uint64 {
	if s.mode == CounterIndex {
		s.index++
		return s.index
	}
	s.nonce++
	return s.nonce
}

// Material returns the exact message string to be HMAC'd for the current
// counter value: "client-nonce" in nonce mode, "client-nonce-index" in index
// mode. An external verifier must be able to rebuild this byte-for-byte from
// the revealed seeds and counters.
func (s *SeedState) Material() string {
	if s.mode == CounterIndex {
		return fmt.Sprintf("%s-%d-%d", s.clientSeed, s.nonce, s.index)
	}
	return fmt.Sprintf("%s-%d", s.clientSeed, s.nonce)
}

// ensureClientSeed generates a client seed if none was supplied.
func (s *SeedState) ensureClientSeed() error {
	if s.clientSeed != "" {
		return nil
	}
	generated, err := randomHex(16)
	if err != nil {
		return &ConfigurationError{Reason: "client seed generation failed: " + err.Error()}
	}
	s.clientSeed = generated
	return nil
}

// randomHex returns n random lowercase hex characters from crypto/rand.
func randomHex(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:n], nil
}
