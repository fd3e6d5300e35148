// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/arbizirq/arbizirq/business/market/domain"
)

// QuoteSource provides price quotes for a pair on one chain. Sources
// are expected to fail independently; the aggregator treats any error
// as "no quotes from this source".
type QuoteSource interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// GetQuotes returns the quotes currently known for pair on chain.
	GetQuotes(ctx context.Context, pair domain.Pair, chain domain.Chain) ([]domain.Quote, error)
}
