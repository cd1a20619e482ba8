package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

// Crypto exposes the hashing primitives the engine is built on. Injecting
// them keeps the digest path testable against fixed vectors.
type Crypto interface {
	Sum256(data []byte) [32]byte
	HMACSum256(key, message []byte) [32]byte
}

// DefaultCrypto uses crypto/sha256 and crypto/hmac.
var DefaultCrypto Crypto = stdCrypto{}

type stdCrypto struct{}

func (stdCrypto) Sum256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

func (stdCrypto) HMACSum256(key, message []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Generator derives deterministic values from a SeedState. All peek
// operations (Digest, Float, Int, ...) are pure with respect to the current
// counter value: calling them twice without an intervening Advance yields
// identical results. Next* variants advance first, then delegate.
type Generator struct {
	state  *SeedState
	crypto Crypto
}

// New wraps a SeedState in a Generator. A missing client seed is generated
// here, on first use; the returned ConfigurationError is unreachable unless
// the system entropy source fails.
func New(state *SeedState) (*Generator, error) {
	if err := state.ensureClientSeed(); err != nil {
		return nil, err
	}
	return &Generator{state: state, crypto: state.crypto}, nil
}

// State returns the underlying SeedState.
func (g *Generator) State() *SeedState { return g.state }

// Digest computes HMAC-SHA256(serverSeed, material) for the current counter
// value. Pure: no counter state is touched.
func (g *Generator) Digest() [32]byte {
	return g.crypto.HMACSum256([]byte(g.state.serverSeed), []byte(g.state.Material()))
}

// Uint256 interprets the full 32-byte digest as a big-endian 256-bit
// unsigned integer. Independent of the float path, which uses only the
// leading bytes.
func (g *Generator) Uint256() *big.Int {
	d := g.Digest()
	return new(big.Int).SetBytes(d[:])
}

// NextUint256 advances the counter once, then returns Uint256.
func (g *Generator) NextUint256() *big.Int {
	g.state.Advance()
	return g.Uint256()
}
