// Package app contains application services and port definitions for the execution context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/execution/domain"
	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
)

// SwapOrder describes one swap leg on a single chain. MaxSlippageBps
// bounds the on-chain minimum output below the limit price.
type SwapOrder struct {
	Chain          marketDomain.Chain
	Venue          string
	Pair           marketDomain.Pair
	Side           string // "buy" or "sell"
	NotionalUSD    decimal.Decimal
	LimitPrice     decimal.Decimal
	MaxSlippageBps decimal.Decimal
}

// ChainLedger abstracts on-chain access. Every call names its chain
// explicitly; the ledger holds no ambient default chain.
type ChainLedger interface {
	// Balance returns the wallet balance of symbol on chain, in USD.
	Balance(ctx context.Context, chain marketDomain.Chain, symbol string) (decimal.Decimal, error)

	// EnsureAllowance makes sure the venue router may spend at least
	// amountUSD of symbol on chain, approving when necessary.
	EnsureAllowance(ctx context.Context, chain marketDomain.Chain, symbol string, amountUSD decimal.Decimal) error

	// ExecuteSwap submits a swap and waits for its receipt.
	ExecuteSwap(ctx context.Context, chain marketDomain.Chain, order SwapOrder) (domain.Receipt, error)

	// Bridge moves amountUSD of symbol from one chain to another
	// through the canonical bridge and waits for the source receipt.
	Bridge(ctx context.Context, from, to marketDomain.Chain, symbol string, amountUSD decimal.Decimal) (domain.Receipt, error)
}

// RouteRequest describes a cross-chain trade for the routing engine.
type RouteRequest struct {
	Pair        marketDomain.Pair
	SourceChain marketDomain.Chain
	TargetChain marketDomain.Chain
	NotionalUSD decimal.Decimal
}

// RouteEstimate is the routing engine's cost preview.
type RouteEstimate struct {
	FeeUSD     decimal.Decimal
	EtaSeconds int
}

// RoutePlan is a built route ready for submission.
type RoutePlan struct {
	ID       string
	CallData string
}

// SettlementState is the routing engine's view of a submitted route.
type SettlementState string

const (
	SettlementPending SettlementState = "pending"
	SettlementSettled SettlementState = "settled"
	SettlementFailed  SettlementState = "failed"
)

// RoutingEngine abstracts the cross-chain routing service:
// estimate -> build -> submit, then settlement polling.
type RoutingEngine interface {
	Estimate(ctx context.Context, req RouteRequest) (RouteEstimate, error)
	Build(ctx context.Context, req RouteRequest) (RoutePlan, error)
	Submit(ctx context.Context, plan RoutePlan) (string, error)
	Settlement(ctx context.Context, ref string) (SettlementState, error)
}
