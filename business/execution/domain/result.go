// Package domain contains the core domain types for the execution context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
)

// Tier identifies which execution strategy produced a result.
type Tier string

const (
	// TierReal is direct on-chain execution through the wallet.
	TierReal Tier = "real"

	// TierRouted is execution through the cross-chain routing engine.
	TierRouted Tier = "routed"

	// TierSimulated is the terminal paper-trade fallback. It cannot fail.
	TierSimulated Tier = "simulated"
)

// ReceiptStatus is the terminal state of one on-chain step.
type ReceiptStatus string

const (
	ReceiptConfirmed ReceiptStatus = "confirmed"
	ReceiptFailed    ReceiptStatus = "failed"
)

// Receipt records one on-chain step of an execution.
type Receipt struct {
	Chain       marketDomain.Chain
	Description string
	TxHash      string
	Status      ReceiptStatus
	GasUsed     uint64
}

// ExecutionResult is the terminal outcome of executing an opportunity.
// Tier and UsedFallback carry provenance: a caller can always tell a
// paper fill from a real one.
type ExecutionResult struct {
	OpportunityID  string
	Tier           Tier
	UsedFallback   bool
	TransactionRef string
	Receipts       []Receipt
	RealizedPnlUSD decimal.Decimal
	ElapsedMs      int64
	CompletedAt    time.Time
}

// IsPaper reports whether the fill was simulated rather than real.
func (r *ExecutionResult) IsPaper() bool {
	return r.Tier == TierSimulated
}
