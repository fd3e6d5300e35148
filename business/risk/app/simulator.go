package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/business/risk/domain"
	"github.com/arbizirq/arbizirq/internal/logger"
)

var (
	// reducedMinProfitUSD is the relaxed gross profit floor applied in
	// the simulation pre-check. The full MinNetPnlUSD gate belongs to
	// execution; the simulator only weeds out trades whose gross PnL
	// cannot even clear $1.
	reducedMinProfitUSD = decimal.NewFromInt(1)

	// highSlippageNoteBps flags elevated slippage in the notes even
	// when the trade stays under the caller's cap.
	highSlippageNoteBps = decimal.NewFromInt(50)

	// feeRatioNoteShare flags trades whose fees eat more than half of
	// the gross profit.
	feeRatioNoteShare = decimal.NewFromFloat(0.5)
)

// Simulator estimates fees, slippage and net PnL for an opportunity.
// It performs no I/O and takes its clock by injection, so identical
// inputs at an identical instant produce identical results.
type Simulator struct {
	guardrails Guardrails
	logger     logger.LoggerInterface
	now        func() time.Time
}

// NewSimulator creates a Simulator with the given thresholds.
func NewSimulator(guardrails Guardrails, log logger.LoggerInterface) *Simulator {
	return &Simulator{
		guardrails: guardrails,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Simulator) WithClock(now func() time.Time) *Simulator {
	s.now = now
	return s
}

// WithMaxSlippageBps derives a simulator with a tightened slippage cap.
// The receiver is not modified.
func (s *Simulator) WithMaxSlippageBps(bps decimal.Decimal) *Simulator {
	return &Simulator{
		guardrails: s.guardrails.WithMaxSlippageBps(bps),
		logger:     s.logger,
		now:        s.now,
	}
}

// Simulate runs the reduced guardrail pre-check and, when it passes,
// computes the fee breakdown and verdict for opp. A failed pre-check
// short-circuits: the result carries the failure reasons with a zero
// breakdown and no slippage estimate.
func (s *Simulator) Simulate(ctx context.Context, opp *marketDomain.Opportunity) domain.SimulationResult {
	if reasons := s.preCheck(opp); len(reasons) > 0 {
		s.logger.Debug(ctx, "simulation pre-check failed",
			"id", opp.ID, "reasons", len(reasons))
		return domain.SimulationResult{OK: false, Notes: reasons}
	}

	breakdown := domain.NewFeeBreakdown(opp)
	net := opp.GrossPnlUSD.Sub(breakdown.TotalUSD)
	slippage := decimal.Max(
		domain.ExpectedSlippageBps(opp.NotionalUSD, opp.BuyQuote.LiquidityUSD),
		domain.ExpectedSlippageBps(opp.NotionalUSD, opp.SellQuote.LiquidityUSD))

	result := domain.SimulationResult{
		NetPnlUSD:   net,
		Breakdown:   breakdown,
		SlippageBps: slippage,
		OK:          net.IsPositive() && slippage.LessThanOrEqual(s.guardrails.MaxSlippageBps),
	}

	if slippage.GreaterThan(highSlippageNoteBps) {
		result.AddNote(fmt.Sprintf("high slippage risk: %sbps", slippage.Round(0)))
	}
	if breakdown.TotalUSD.GreaterThan(opp.GrossPnlUSD.Mul(feeRatioNoteShare)) {
		result.AddNote("high fee ratio compared to gross profit")
	}

	s.logger.Debug(ctx, "simulated opportunity",
		"id", opp.ID,
		"net_pnl_usd", net.Round(4).String(),
		"slippage_bps", slippage.Round(2).String(),
		"ok", result.OK)

	return result
}

// preCheck re-runs the reduced guardrails: per-leg quote freshness,
// the $1 gross profit floor and per-leg slippage against the cap. It
// returns one reason per violated check.
func (s *Simulator) preCheck(opp *marketDomain.Opportunity) []string {
	var reasons []string
	now := s.now()

	if age := now.Sub(opp.BuyQuote.ObservedAt); age > s.guardrails.MaxQuoteAge {
		reasons = append(reasons, fmt.Sprintf("buy quote is %.0fs old, freshness window is %s",
			age.Seconds(), s.guardrails.MaxQuoteAge))
	}
	if age := now.Sub(opp.SellQuote.ObservedAt); age > s.guardrails.MaxQuoteAge {
		reasons = append(reasons, fmt.Sprintf("sell quote is %.0fs old, freshness window is %s",
			age.Seconds(), s.guardrails.MaxQuoteAge))
	}

	if opp.GrossPnlUSD.LessThan(reducedMinProfitUSD) {
		reasons = append(reasons, fmt.Sprintf("gross PnL $%s below $%s floor",
			opp.GrossPnlUSD.Round(2), reducedMinProfitUSD))
	}

	if slip := domain.ExpectedSlippageBps(opp.NotionalUSD, opp.BuyQuote.LiquidityUSD); slip.GreaterThan(s.guardrails.MaxSlippageBps) {
		reasons = append(reasons, fmt.Sprintf("buy leg slippage %sbps exceeds cap %sbps",
			slip.Round(2), s.guardrails.MaxSlippageBps))
	}
	if slip := domain.ExpectedSlippageBps(opp.NotionalUSD, opp.SellQuote.LiquidityUSD); slip.GreaterThan(s.guardrails.MaxSlippageBps) {
		reasons = append(reasons, fmt.Sprintf("sell leg slippage %sbps exceeds cap %sbps",
			slip.Round(2), s.guardrails.MaxSlippageBps))
	}

	return reasons
}
