package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestSeedStateMaterial(t *testing.T) {
	tests := []struct {
		name string
		cfg  SeedConfig
		want string
	}{
		{
			name: "nonce mode",
			cfg:  SeedConfig{ClientSeed: "clientSeed", ServerSeed: "serverSeed", Nonce: 0},
			want: "clientSeed-0",
		},
		{
			name: "nonce mode nonzero",
			cfg:  SeedConfig{ClientSeed: "abc", ServerSeed: "s", Nonce: 42},
			want: "abc-42",
		},
		{
			name: "index mode includes nonce and index",
			cfg:  SeedConfig{ClientSeed: "abc", ServerSeed: "s", Mode: CounterIndex, Nonce: 7, Index: 3},
			want: "abc-7-3",
		},
		{
			name: "multiple client seeds joined with pipe",
			cfg:  SeedConfig{ClientSeeds: []string{"one", "two", "three"}, ServerSeed: "s", Nonce: 1},
			want: "one|two|three-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := NewSeedState(tt.cfg)
			if err != nil {
				t.Fatalf("NewSeedState() error: %v", err)
			}
			if got := state.Material(); got != tt.want {
				t.Errorf("Material() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeedStateCommitment(t *testing.T) {
	state, err := NewSeedState(SeedConfig{ClientSeed: "c", ServerSeed: "serverSeed"})
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}

	// The commitment must be independently verifiable from the revealed seed.
	sum := sha256.Sum256([]byte(state.ServerSeed()))
	want := hex.EncodeToString(sum[:])
	if state.ServerSeedHash() != want {
		t.Errorf("ServerSeedHash() = %s, want %s", state.ServerSeedHash(), want)
	}
}

func TestSeedStateGeneratedServerSeed(t *testing.T) {
	state, err := NewSeedState(SeedConfig{ClientSeed: "c"})
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}

	seed := state.ServerSeed()
	if len(seed) != 64 {
		t.Fatalf("generated server seed length = %d, want 64", len(seed))
	}
	if strings.Trim(seed, "0123456789abcdef") != "" {
		t.Errorf("generated server seed is not lowercase hex: %q", seed)
	}

	other, err := NewSeedState(SeedConfig{ClientSeed: "c"})
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}
	if other.ServerSeed() == seed {
		t.Error("two generated server seeds are identical")
	}
}

func TestSeedStateAdvance(t *testing.T) {
	t.Run("nonce mode", func(t *testing.T) {
		state, err := NewSeedState(SeedConfig{ClientSeed: "c", ServerSeed: "s", Nonce: 5})
		if err != nil {
			t.Fatalf("NewSeedState() error: %v", err)
		}

		if got := state.Advance(); got != 6 {
			t.Errorf("Advance() = %d, want 6", got)
		}
		if got := state.Advance(); got != 7 {
			t.Errorf("Advance() = %d, want 7", got)
		}
		if state.Nonce() != 7 {
			t.Errorf("Nonce() = %d, want 7", state.Nonce())
		}
	})

	t.Run("index mode leaves nonce fixed", func(t *testing.T) {
		state, err := NewSeedState(SeedConfig{ClientSeed: "c", ServerSeed: "s", Mode: CounterIndex, Nonce: 9})
		if err != nil {
			t.Fatalf("NewSeedState() error: %v", err)
		}

		state.Advance()
		state.Advance()
		if state.Nonce() != 9 {
			t.Errorf("Nonce() = %d, want 9 (nonce must not move in index mode)", state.Nonce())
		}
		if state.Index() != 2 {
			t.Errorf("Index() = %d, want 2", state.Index())
		}
		if got := state.Material(); got != "c-9-2" {
			t.Errorf("Material() = %q, want %q", got, "c-9-2")
		}
	})
}

func TestLazyClientSeed(t *testing.T) {
	state, err := NewSeedState(SeedConfig{ServerSeed: "s"})
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}
	if state.ClientSeed() != "" {
		t.Fatalf("client seed generated eagerly: %q", state.ClientSeed())
	}

	if _, err := New(state); err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if len(state.ClientSeed()) != 16 {
		t.Errorf("lazy client seed length = %d, want 16", len(state.ClientSeed()))
	}
}

func TestSetClientSeed(t *testing.T) {
	state, err := NewSeedState(SeedConfig{ClientSeed: "before", ServerSeed: "s"})
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}
	state.SetClientSeed("after")
	if got := state.Material(); got != "after-0" {
		t.Errorf("Material() = %q, want %q", got, "after-0")
	}
}
