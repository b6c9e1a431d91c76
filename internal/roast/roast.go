// Package roast picks a humorous one-liner to attach to a freshly logged
// expense. Selection is uniform over a fixed message table; the random
// source is injectable so tests can drive it deterministically.
package roast

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

type template func(amount decimal.Decimal, category string) string

var templates = []template{
	func(amount decimal.Decimal, category string) string {
		return fmt.Sprintf("Spent ₹%s on %s? Your bank account just filed for emotional damage! 💔", amount, category)
	},
	func(amount decimal.Decimal, _ string) string {
		return fmt.Sprintf("₹%s gone faster than your ex! At least the ex was free... 🏃", amount)
	},
	func(amount decimal.Decimal, _ string) string {
		return fmt.Sprintf("Breaking News: Local person throws ₹%s into the void! More at 11! 📺", amount)
	},
	func(amount decimal.Decimal, _ string) string {
		return fmt.Sprintf("Your wallet is now ₹%s lighter and your regrets are ₹%s heavier! ⚖️", amount, amount)
	},
	func(amount decimal.Decimal, _ string) string {
		return fmt.Sprintf("Plot twist: That ₹%s could've been invested in therapy for your shopping addiction! 🛍️", amount)
	},
	func(amount decimal.Decimal, _ string) string {
		return fmt.Sprintf("Congratulations! You just contributed ₹%s to the 'Why Am I Always Broke?' fund! 🎉", amount)
	},
	func(_ decimal.Decimal, _ string) string {
		return "Your financial advisor would need financial advice after seeing this! 😱"
	},
	func(_ decimal.Decimal, _ string) string {
		return "If poor decisions were an Olympic sport, you'd be taking gold! 🥇"
	},
	func(amount decimal.Decimal, _ string) string {
		return fmt.Sprintf("₹%s? Even your calculator is judging you right now! 🧮", amount)
	},
	func(_ decimal.Decimal, _ string) string {
		return "Your money management skills are like a chocolate teapot - sweet but totally impractical! 🍫"
	},
}

// TableSize returns the number of message templates.
func TableSize() int {
	return len(templates)
}

// Generator selects roast messages from the fixed table.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. A nil source falls back to a time-seeded one.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Pick returns one roast, chosen uniformly over the table. Templates that
// take parameters interpolate the amount and category verbatim.
func (g *Generator) Pick(amount decimal.Decimal, category string) string {
	return templates[g.rng.Intn(len(templates))](amount, category)
}
