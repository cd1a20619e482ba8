package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"math"
	"testing"
)

func newTestGenerator(t *testing.T, cfg SeedConfig) *Generator {
	t.Helper()
	state, err := NewSeedState(cfg)
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}
	g, err := New(state)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

// fixedCrypto returns a constant digest regardless of input, so derived
// values can be checked exactly.
type fixedCrypto struct {
	digest [32]byte
}

func (f fixedCrypto) Sum256(data []byte) [32]byte            { return sha256.Sum256(data) }
func (f fixedCrypto) HMACSum256(key, message []byte) [32]byte { return f.digest }

func fixedGenerator(t *testing.T, digest [32]byte) *Generator {
	t.Helper()
	state, err := NewSeedState(SeedConfig{ClientSeed: "c", ServerSeed: "s", Crypto: fixedCrypto{digest: digest}})
	if err != nil {
		t.Fatalf("NewSeedState() error: %v", err)
	}
	g, err := New(state)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

func TestDigestMatchesHMAC(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "clientSeed", ServerSeed: "serverSeed", Nonce: 0})

	mac := hmac.New(sha256.New, []byte("serverSeed"))
	mac.Write([]byte("clientSeed-0"))
	want := mac.Sum(nil)

	got := g.Digest()
	if !hmac.Equal(got[:], want) {
		t.Errorf("Digest() = %x, want %x", got, want)
	}
}

func TestDigestPurity(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s", Nonce: 3})

	first := g.Digest()
	second := g.Digest()
	if first != second {
		t.Error("Digest() is not pure: two calls without Advance differ")
	}

	g.State().Advance()
	third := g.Digest()
	if first == third {
		t.Error("Digest() unchanged after Advance()")
	}
}

func TestFloatRangeAndPurity(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})

	for i := 0; i < 1000; i++ {
		f := g.Float()
		if f < 0 || f >= 1 {
			t.Fatalf("Float() = %v out of [0, 1) at nonce %d", f, g.State().Nonce())
		}
		if again := g.Float(); again != f {
			t.Fatalf("Float() not pure at nonce %d: %v != %v", g.State().Nonce(), f, again)
		}
		g.State().Advance()
	}
}

func TestFloatTwoInstancesIdentical(t *testing.T) {
	a := newTestGenerator(t, SeedConfig{ClientSeed: "clientSeed", ServerSeed: "serverSeed"})
	b := newTestGenerator(t, SeedConfig{ClientSeed: "clientSeed", ServerSeed: "serverSeed"})

	for i := 0; i < 100; i++ {
		fa, fb := a.Float(), b.Float()
		if fa != fb {
			t.Fatalf("instances diverge at step %d: %v != %v", i, fa, fb)
		}
		a.State().Advance()
		b.State().Advance()
	}
}

func TestFloatMantissaConstruction(t *testing.T) {
	// First 7 bytes 0x80 00 00 00 00 00 00: top 52 bits are 2^51, so the
	// float must be exactly 0.5.
	var digest [32]byte
	digest[0] = 0x80
	g := fixedGenerator(t, digest)
	if f := g.Float(); f != 0.5 {
		t.Errorf("Float() = %v, want 0.5", f)
	}

	// All-ones digest: largest mantissa, still strictly below 1.
	for i := range digest {
		digest[i] = 0xff
	}
	g = fixedGenerator(t, digest)
	if f := g.Float(); f >= 1 {
		t.Errorf("Float() = %v, want < 1", f)
	}
}

func TestIntRanges(t *testing.T) {
	tests := []struct {
		name     string
		min, max int64
	}{
		{"single value", 5, 5},
		{"small range", 0, 9},
		{"negative range", -10, -1},
		{"spanning zero", -5, 5},
		{"dice range", 1, 6},
		{"large range", 0, 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
			for i := 0; i < 500; i++ {
				v, err := g.NextInt(tt.min, tt.max)
				if err != nil {
					t.Fatalf("NextInt(%d, %d) error: %v", tt.min, tt.max, err)
				}
				if v < tt.min || v > tt.max {
					t.Fatalf("NextInt(%d, %d) = %d out of range", tt.min, tt.max, v)
				}
			}
		})
	}
}

func TestIntRangeErrors(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})

	var rangeErr *RangeError
	if _, err := g.Int(10, 9); !errors.As(err, &rangeErr) {
		t.Errorf("Int(10, 9) error = %v, want RangeError", err)
	}
	if _, err := g.Int(0, 1<<33); !errors.As(err, &rangeErr) {
		t.Errorf("Int(0, 2^33) error = %v, want RangeError for oversized range", err)
	}
	if _, err := g.Int(math.MinInt64, math.MaxInt64); !errors.As(err, &rangeErr) {
		t.Errorf("Int(full int64) error = %v, want RangeError for oversized range", err)
	}
}

func TestNextIntAdvancesExactlyOnce(t *testing.T) {
	// Span 256 divides 2^32 exactly, so the rejection path can never fire
	// and the only advance is the deliberate one.
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
	for i := 0; i < 200; i++ {
		before := g.State().Nonce()
		if _, err := g.NextInt(0, 255); err != nil {
			t.Fatalf("NextInt() error: %v", err)
		}
		if got := g.State().Nonce(); got != before+1 {
			t.Fatalf("NextInt advanced nonce %d -> %d, want exactly +1", before, got)
		}
	}
}

func TestIntPeekDoesNotAdvanceOnAccept(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
	before := g.State().Nonce()
	first, err := g.Int(0, 255)
	if err != nil {
		t.Fatalf("Int() error: %v", err)
	}
	second, err := g.Int(0, 255)
	if err != nil {
		t.Fatalf("Int() error: %v", err)
	}
	if first != second {
		t.Errorf("Int() not pure on accepting path: %d != %d", first, second)
	}
	if g.State().Nonce() != before {
		t.Errorf("Int() advanced the counter on accepting path")
	}
}

func TestIntUniformity(t *testing.T) {
	// Chi-square over 10 buckets. The 0.001 critical value for 9 degrees of
	// freedom is 27.9; the bound below adds margin. Fixed seeds keep the
	// test deterministic.
	const buckets = 10
	const draws = 20000

	g := newTestGenerator(t, SeedConfig{ClientSeed: "uniformity", ServerSeed: "uniformity_server"})
	counts := make([]int, buckets)
	for i := 0; i < draws; i++ {
		v, err := g.NextInt(0, buckets-1)
		if err != nil {
			t.Fatalf("NextInt() error: %v", err)
		}
		counts[v]++
	}

	expected := float64(draws) / buckets
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	if chi2 > 39 {
		t.Errorf("chi-square = %.2f over %v, distribution looks biased", chi2, counts)
	}
}

func TestRoundedFloat(t *testing.T) {
	t.Run("range error", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		var rangeErr *RangeError
		if _, err := g.RoundedFloat(2, 1, 2); !errors.As(err, &rangeErr) {
			t.Errorf("RoundedFloat(2, 1, 2) error = %v, want RangeError", err)
		}
	})

	t.Run("stays in range", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		for i := 0; i < 500; i++ {
			v, err := g.NextRoundedFloat(0, 100, 2)
			if err != nil {
				t.Fatalf("NextRoundedFloat() error: %v", err)
			}
			if v < 0 || v > 100 {
				t.Fatalf("NextRoundedFloat(0, 100, 2) = %v out of range", v)
			}
			if math.Round(v*100) != v*100 {
				t.Fatalf("NextRoundedFloat(0, 100, 2) = %v not at hundredths", v)
			}
		}
	})

	t.Run("half rounds away from zero", func(t *testing.T) {
		// Fixed digest gives Float() == 0.5 exactly; 0.5*0.05 = 0.025
		// must round up to 0.03, not down to 0.02.
		var digest [32]byte
		digest[0] = 0x80
		g := fixedGenerator(t, digest)
		v, err := g.RoundedFloat(0, 0.05, 2)
		if err != nil {
			t.Fatalf("RoundedFloat() error: %v", err)
		}
		if v != 0.03 {
			t.Errorf("RoundedFloat(0, 0.05, 2) = %v, want 0.03", v)
		}
	})

	t.Run("does not advance", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		before := g.State().Nonce()
		if _, err := g.RoundedFloat(0, 10, 3); err != nil {
			t.Fatalf("RoundedFloat() error: %v", err)
		}
		if g.State().Nonce() != before {
			t.Error("RoundedFloat() advanced the counter")
		}
	})
}

func TestUint256(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})

	d := g.Digest()
	v := g.Uint256()
	if v.Sign() < 0 {
		t.Fatal("Uint256() returned a negative value")
	}
	if v.BitLen() > 256 {
		t.Fatalf("Uint256() bit length = %d, want <= 256", v.BitLen())
	}

	// Big-endian reconstruction: shifting out the low 248 bits must leave
	// the first digest byte.
	top := v.Rsh(v, 248).Int64()
	if byte(top) != d[0] {
		t.Errorf("Uint256 top byte = %#x, want %#x", top, d[0])
	}
}

func TestInjectedCryptoCapability(t *testing.T) {
	var digest [32]byte
	digest[0] = 0x12
	digest[6] = 0x34
	g := fixedGenerator(t, digest)

	got := g.Digest()
	if got != digest {
		t.Errorf("Digest() with injected crypto = %x, want %x", got, digest)
	}
}
