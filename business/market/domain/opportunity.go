package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks an opportunity through its lifecycle. Transitions are
// monotone: new -> simulated -> executing -> executed | failed.
type Status string

const (
	StatusNew       Status = "new"
	StatusSimulated Status = "simulated"
	StatusExecuting Status = "executing"
	StatusExecuted  Status = "executed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusExecuted || s == StatusFailed
}

var statusSuccessors = map[Status][]Status{
	StatusNew:       {StatusSimulated},
	StatusSimulated: {StatusExecuting},
	StatusExecuting: {StatusExecuted, StatusFailed},
}

// CanTransition reports whether next is a legal successor of s.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusSuccessors[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Opportunity represents a detected cross-chain arbitrage opportunity:
// buy the base token on the source chain, sell it on the target chain.
type Opportunity struct {
	ID          string
	Pair        Pair
	SourceChain Chain
	TargetChain Chain
	BuyQuote    Quote
	SellQuote   Quote
	NotionalUSD decimal.Decimal
	GrossPnlUSD decimal.Decimal
	CreatedAt   time.Time
	Status      Status
}

// NewOpportunity builds an opportunity and enforces its creation
// invariants: distinct chains and strictly positive gross PnL.
func NewOpportunity(buy, sell Quote, notionalUSD, grossPnlUSD decimal.Decimal, createdAt time.Time) (*Opportunity, error) {
	if buy.Chain == sell.Chain {
		return nil, fmt.Errorf("opportunity: source and target chain are both %q", buy.Chain)
	}
	if buy.Pair != sell.Pair {
		return nil, fmt.Errorf("opportunity: mismatched pairs %s and %s", buy.Pair, sell.Pair)
	}
	if !grossPnlUSD.IsPositive() {
		return nil, fmt.Errorf("opportunity: gross PnL %s is not positive", grossPnlUSD)
	}
	if !notionalUSD.IsPositive() {
		return nil, fmt.Errorf("opportunity: notional %s is not positive", notionalUSD)
	}

	return &Opportunity{
		ID:          opportunityID(buy.Pair, buy.Chain, sell.Chain, createdAt),
		Pair:        buy.Pair,
		SourceChain: buy.Chain,
		TargetChain: sell.Chain,
		BuyQuote:    buy,
		SellQuote:   sell,
		NotionalUSD: notionalUSD,
		GrossPnlUSD: grossPnlUSD,
		CreatedAt:   createdAt,
		Status:      StatusNew,
	}, nil
}

// opportunityID derives the route-scoped identifier.
func opportunityID(pair Pair, src, dst Chain, at time.Time) string {
	return fmt.Sprintf("%s_%s-%s_%d", pair, src, dst, at.UnixMilli())
}

// TransitionTo advances the status, rejecting illegal or backward moves.
func (o *Opportunity) TransitionTo(next Status) error {
	if !o.Status.CanTransition(next) {
		return fmt.Errorf("opportunity %s: illegal transition %s -> %s", o.ID, o.Status, next)
	}
	o.Status = next
	return nil
}

// SpreadBps returns the buy/sell spread in basis points.
func (o *Opportunity) SpreadBps() decimal.Decimal {
	if o.BuyQuote.Price.IsZero() {
		return decimal.Zero
	}
	return o.SellQuote.Price.Sub(o.BuyQuote.Price).
		Div(o.BuyQuote.Price).
		Mul(decimal.NewFromInt(10000))
}

// QuoteAge returns the age of the older of the two quotes.
func (o *Opportunity) QuoteAge(now time.Time) time.Duration {
	buyAge := o.BuyQuote.Age(now)
	sellAge := o.SellQuote.Age(now)
	if buyAge > sellAge {
		return buyAge
	}
	return sellAge
}

// MinLiquidityUSD returns the smaller of the two quote liquidities.
func (o *Opportunity) MinLiquidityUSD() decimal.Decimal {
	if o.BuyQuote.LiquidityUSD.LessThan(o.SellQuote.LiquidityUSD) {
		return o.BuyQuote.LiquidityUSD
	}
	return o.SellQuote.LiquidityUSD
}
