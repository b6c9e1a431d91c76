package roast

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGenerator_PickCoversWholeTable(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))
	amount := decimal.NewFromInt(500)

	seen := make(map[string]int)
	const draws = 10000
	for i := 0; i < draws; i++ {
		seen[g.Pick(amount, "Shopping")]++
	}

	if len(seen) != TableSize() {
		t.Fatalf("observed %d distinct messages, want %d", len(seen), TableSize())
	}

	// Uniform selection: each template should land near draws/TableSize.
	expected := draws / TableSize()
	for msg, count := range seen {
		if count < expected/2 || count > expected*2 {
			t.Errorf("message %q drawn %d times, expected around %d", msg, count, expected)
		}
	}
}

func TestGenerator_PickInterpolatesAmountAndCategory(t *testing.T) {
	// The first template uses both parameters.
	g := New(rand.New(zeroSource{}))

	got := g.Pick(decimal.NewFromInt(750), "Entertainment")

	if !strings.Contains(got, "₹750") {
		t.Errorf("roast %q does not mention the amount", got)
	}
	if !strings.Contains(got, "Entertainment") {
		t.Errorf("roast %q does not mention the category", got)
	}
}

func TestGenerator_DeterministicWithFixedSource(t *testing.T) {
	amount := decimal.NewFromInt(100)

	a := New(rand.New(rand.NewSource(42))).Pick(amount, "Bills")
	b := New(rand.New(rand.NewSource(42))).Pick(amount, "Bills")

	if a != b {
		t.Errorf("same seed produced different roasts: %q vs %q", a, b)
	}
}

func TestNew_NilSource(t *testing.T) {
	g := New(nil)
	if got := g.Pick(decimal.NewFromInt(10), "Other"); got == "" {
		t.Error("Pick returned an empty roast")
	}
}

// zeroSource always yields zero, forcing selection of the first template.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}
