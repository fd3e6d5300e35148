package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/logger"
)

const (
	// Per-source fetch budget. A slow source must not hold the scan.
	defaultSourceTimeout = 5 * time.Second
)

// defaultLiquidityFloorUSD drops dust pools before detection.
var defaultLiquidityFloorUSD = decimal.NewFromInt(1000)

// AggregatorConfig holds aggregation settings.
type AggregatorConfig struct {
	SourceTimeout     time.Duration
	LiquidityFloorUSD decimal.Decimal
}

// Aggregator fans out a quote request to every (source, chain)
// combination concurrently and merges the results. Source failures are
// logged and swallowed; an empty result is a valid outcome.
type Aggregator struct {
	sources []QuoteSource
	config  AggregatorConfig
	logger  logger.LoggerInterface
	now     func() time.Time
}

// NewAggregator creates an Aggregator over the given sources.
func NewAggregator(sources []QuoteSource, cfg AggregatorConfig, log logger.LoggerInterface) *Aggregator {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaultSourceTimeout
	}
	if cfg.LiquidityFloorUSD.IsZero() {
		cfg.LiquidityFloorUSD = defaultLiquidityFloorUSD
	}
	return &Aggregator{
		sources: sources,
		config:  cfg,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// GetQuotes collects quotes for pair across chains. It never returns an
// error: every source failure degrades the result instead of failing it.
func (a *Aggregator) GetQuotes(ctx context.Context, pair domain.Pair, chains []domain.Chain) []domain.Quote {
	type fetch struct {
		source QuoteSource
		chain  domain.Chain
	}

	var fetches []fetch
	for _, src := range a.sources {
		for _, chain := range chains {
			fetches = append(fetches, fetch{source: src, chain: chain})
		}
	}

	results := make(chan []domain.Quote, len(fetches))
	var wg sync.WaitGroup

	for _, f := range fetches {
		wg.Add(1)
		go func(f fetch) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.config.SourceTimeout)
			defer cancel()

			quotes, err := f.source.GetQuotes(fetchCtx, pair, f.chain)
			if err != nil {
				a.logger.Warn(ctx, "quote source failed",
					"source", f.source.Name(),
					"chain", f.chain,
					"pair", pair.String(),
					"error", err)
				return
			}
			results <- quotes
		}(f)
	}

	wg.Wait()
	close(results)

	var merged []domain.Quote
	for quotes := range results {
		for _, q := range quotes {
			if err := q.Validate(); err != nil {
				a.logger.Debug(ctx, "dropping invalid quote", "error", err)
				continue
			}
			if q.LiquidityUSD.LessThan(a.config.LiquidityFloorUSD) {
				continue
			}
			merged = append(merged, q)
		}
	}

	a.logger.Debug(ctx, "aggregated quotes",
		"pair", pair.String(),
		"chains", len(chains),
		"sources", len(a.sources),
		"quotes", len(merged))

	return merged
}
