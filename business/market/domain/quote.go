package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pair represents a trading pair at the symbol level. Symbol-level
// identity is what lets the same pair be compared across chains.
type Pair struct {
	Base  string
	Quote string
}

// NewPair creates a trading pair from two symbols.
func NewPair(base, quote string) Pair {
	return Pair{Base: base, Quote: quote}
}

// ParsePair parses a "BASE-QUOTE" pair string.
func ParsePair(s string) (Pair, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair: %q", s)
	}
	return Pair{Base: parts[0], Quote: parts[1]}, nil
}

// String returns the pair symbol (e.g., "WETH-USDC").
func (p Pair) String() string {
	return p.Base + "-" + p.Quote
}

// Quote is a price observation for a pair on one venue of one chain.
// Price is denominated in the quote token, liquidity in USD.
type Quote struct {
	Venue        string
	Chain        Chain
	Pair         Pair
	Price        decimal.Decimal
	LiquidityUSD decimal.Decimal
	ObservedAt   time.Time
}

// Validate checks the structural invariants of a quote.
func (q *Quote) Validate() error {
	if q.Venue == "" {
		return fmt.Errorf("quote: empty venue")
	}
	if !q.Chain.IsSupported() {
		return fmt.Errorf("quote: unsupported chain %q", q.Chain)
	}
	if !q.Price.IsPositive() {
		return fmt.Errorf("quote: non-positive price %s", q.Price)
	}
	if q.LiquidityUSD.IsNegative() {
		return fmt.Errorf("quote: negative liquidity %s", q.LiquidityUSD)
	}
	if q.ObservedAt.IsZero() {
		return fmt.Errorf("quote: zero timestamp")
	}
	return nil
}

// Age returns how old the quote is relative to now.
func (q *Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.ObservedAt)
}

// IsFresh reports whether the quote is younger than maxAge.
func (q *Quote) IsFresh(now time.Time, maxAge time.Duration) bool {
	return q.Age(now) <= maxAge
}
