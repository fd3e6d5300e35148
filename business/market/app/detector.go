package app

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/logger"
)

// DetectorConfig holds detection settings.
type DetectorConfig struct {
	// TradeSizeUSD is the requested notional per opportunity.
	TradeSizeUSD decimal.Decimal
	// MaxTradeSizeUSD caps the notional regardless of liquidity.
	MaxTradeSizeUSD decimal.Decimal
}

// Detector finds cross-chain buy/sell spreads in an aggregated quote
// set. For every ordered chain route it takes the cheapest buy on the
// source chain and the richest sell on the target chain, so each route
// yields at most one opportunity per detection pass.
type Detector struct {
	config DetectorConfig
	logger logger.LoggerInterface
	now    func() time.Time
}

// NewDetector creates a Detector.
func NewDetector(cfg DetectorConfig, log logger.LoggerInterface) *Detector {
	return &Detector{
		config: cfg,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// Detect returns every profitable route in quotes, sorted by gross PnL
// descending with min-liquidity as the tie break.
func (d *Detector) Detect(ctx context.Context, quotes []domain.Quote) []*domain.Opportunity {
	byChain := make(map[domain.Chain][]domain.Quote)
	for _, q := range quotes {
		byChain[q.Chain] = append(byChain[q.Chain], q)
	}

	chains := make([]domain.Chain, 0, len(byChain))
	for chain := range byChain {
		chains = append(chains, chain)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })

	createdAt := d.now()
	var opps []*domain.Opportunity

	for _, src := range chains {
		for _, dst := range chains {
			if src == dst {
				continue
			}

			buy := bestBuy(byChain[src])
			sell := bestSell(byChain[dst])
			if buy == nil || sell == nil {
				continue
			}
			if !sell.Price.GreaterThan(buy.Price) {
				continue
			}

			notional := d.notionalFor(*buy, *sell)
			if !notional.IsPositive() {
				continue
			}

			// Units bought at the source price, sold at the target price.
			units := notional.Div(buy.Price)
			gross := sell.Price.Sub(buy.Price).Mul(units)
			if !gross.IsPositive() {
				continue
			}

			opp, err := domain.NewOpportunity(*buy, *sell, notional, gross, createdAt)
			if err != nil {
				d.logger.Debug(ctx, "skipping candidate", "route", string(src)+"-"+string(dst), "error", err)
				continue
			}
			opps = append(opps, opp)
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		if !opps[i].GrossPnlUSD.Equal(opps[j].GrossPnlUSD) {
			return opps[i].GrossPnlUSD.GreaterThan(opps[j].GrossPnlUSD)
		}
		return opps[i].MinLiquidityUSD().GreaterThan(opps[j].MinLiquidityUSD())
	})

	d.logger.Debug(ctx, "detection pass complete",
		"quotes", len(quotes),
		"opportunities", len(opps))

	return opps
}

// notionalFor sizes the trade: the requested size bounded by both legs'
// liquidity and the per-trade cap.
func (d *Detector) notionalFor(buy, sell domain.Quote) decimal.Decimal {
	notional := d.config.TradeSizeUSD
	if buy.LiquidityUSD.LessThan(notional) {
		notional = buy.LiquidityUSD
	}
	if sell.LiquidityUSD.LessThan(notional) {
		notional = sell.LiquidityUSD
	}
	if d.config.MaxTradeSizeUSD.IsPositive() && notional.GreaterThan(d.config.MaxTradeSizeUSD) {
		notional = d.config.MaxTradeSizeUSD
	}
	return notional
}

// bestBuy picks the lowest price, breaking ties on deeper liquidity.
func bestBuy(quotes []domain.Quote) *domain.Quote {
	var best *domain.Quote
	for i := range quotes {
		q := &quotes[i]
		if best == nil ||
			q.Price.LessThan(best.Price) ||
			(q.Price.Equal(best.Price) && q.LiquidityUSD.GreaterThan(best.LiquidityUSD)) {
			best = q
		}
	}
	return best
}

// bestSell picks the highest price, breaking ties on deeper liquidity.
func bestSell(quotes []domain.Quote) *domain.Quote {
	var best *domain.Quote
	for i := range quotes {
		q := &quotes[i]
		if best == nil ||
			q.Price.GreaterThan(best.Price) ||
			(q.Price.Equal(best.Price) && q.LiquidityUSD.GreaterThan(best.LiquidityUSD)) {
			best = q
		}
	}
	return best
}
