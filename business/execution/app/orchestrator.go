package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/execution/domain"
	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/logger"
)

const (
	// Placeholder fill latency reported by the simulated tier.
	simulatedLatencyMs = 2500

	defaultSettlementAttempts = 30
	defaultSettlementInterval = time.Second
)

var (
	// Discounts applied to the expected net PnL by the simulated tier:
	// a planned paper trade keeps more of the estimate than one reached
	// by falling back after failures.
	dryRunPnlFactor   = decimal.NewFromFloat(0.95)
	fallbackPnlFactor = decimal.NewFromFloat(0.90)
)

// OrchestratorConfig holds execution settings.
type OrchestratorConfig struct {
	DryRun             bool
	SettlementAttempts int
	SettlementInterval time.Duration
}

// Orchestrator drives an opportunity through the three execution tiers:
// real on-chain execution, the cross-chain routing engine, and finally
// a simulated fill. The simulated tier cannot fail, so every accepted
// opportunity reaches a terminal status.
type Orchestrator struct {
	ledger  ChainLedger // nil when no wallet is configured
	routing RoutingEngine
	config  OrchestratorConfig
	logger  logger.LoggerInterface
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an Orchestrator. ledger may be nil; the real
// tier is then skipped entirely.
func NewOrchestrator(ledger ChainLedger, routing RoutingEngine, cfg OrchestratorConfig, log logger.LoggerInterface) *Orchestrator {
	if cfg.SettlementAttempts <= 0 {
		cfg.SettlementAttempts = defaultSettlementAttempts
	}
	if cfg.SettlementInterval <= 0 {
		cfg.SettlementInterval = defaultSettlementInterval
	}
	return &Orchestrator{
		ledger:  ledger,
		routing: routing,
		config:  cfg,
		logger:  log,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// WithClock overrides the time source and makes sleeps instant.
// Intended for tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	o.sleep = func(context.Context, time.Duration) error { return nil }
	return o
}

// Execute runs the tier chain for a simulated opportunity. The
// expected net PnL comes from the caller's simulation and anchors the
// realized PnL of the simulated tier; maxSlippageBps bounds the
// on-chain minimum outputs of the real tier.
func (o *Orchestrator) Execute(ctx context.Context, opp *marketDomain.Opportunity, expectedNetPnlUSD, maxSlippageBps decimal.Decimal, dryRun bool) (*domain.ExecutionResult, error) {
	start := o.now()

	if err := opp.TransitionTo(marketDomain.StatusExecuting); err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidState, err.Error())
	}

	dryRun = dryRun || o.config.DryRun

	// A planned paper trade goes straight to the simulated tier.
	if dryRun {
		result := o.executeSimulated(opp, expectedNetPnlUSD, start, false)
		_ = opp.TransitionTo(marketDomain.StatusExecuted)
		return result, nil
	}

	// Tier 1: direct on-chain execution.
	if o.ledger != nil && ctx.Err() == nil {
		result, err := o.executeReal(ctx, opp, expectedNetPnlUSD, maxSlippageBps, start)
		if err == nil {
			_ = opp.TransitionTo(marketDomain.StatusExecuted)
			return result, nil
		}
		o.logger.Warn(ctx, "real execution failed, falling back to routing engine",
			"id", opp.ID, "error", err)
	}

	// Tier 2: cross-chain routing engine.
	if o.routing != nil && ctx.Err() == nil {
		result, err := o.executeRouted(ctx, opp, expectedNetPnlUSD, start)
		if err == nil {
			result.UsedFallback = o.ledger != nil
			_ = opp.TransitionTo(marketDomain.StatusExecuted)
			return result, nil
		}
		o.logger.Warn(ctx, "routed execution failed, falling back to simulated fill",
			"id", opp.ID, "error", err)
	}

	// Tier 3: simulated fill. Always succeeds, also under cancellation.
	result := o.executeSimulated(opp, expectedNetPnlUSD, start, true)
	_ = opp.TransitionTo(marketDomain.StatusExecuted)
	return result, nil
}

// executeReal runs the buy, bridge and sell legs through the ledger.
func (o *Orchestrator) executeReal(ctx context.Context, opp *marketDomain.Opportunity, expectedNetPnlUSD, maxSlippageBps decimal.Decimal, start time.Time) (*domain.ExecutionResult, error) {
	var receipts []domain.Receipt

	if err := o.ledger.EnsureAllowance(ctx, opp.SourceChain, opp.Pair.Quote, opp.NotionalUSD); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInsufficientAllowance, "source chain allowance")
	}

	buyReceipt, err := o.ledger.ExecuteSwap(ctx, opp.SourceChain, SwapOrder{
		Chain:          opp.SourceChain,
		Venue:          opp.BuyQuote.Venue,
		Pair:           opp.Pair,
		Side:           "buy",
		NotionalUSD:    opp.NotionalUSD,
		LimitPrice:     opp.BuyQuote.Price,
		MaxSlippageBps: maxSlippageBps,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTransactionFailed, "buy leg")
	}
	receipts = append(receipts, buyReceipt)

	bridgeReceipt, err := o.ledger.Bridge(ctx, opp.SourceChain, opp.TargetChain, opp.Pair.Base, opp.NotionalUSD)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTransactionFailed, "bridge leg")
	}
	receipts = append(receipts, bridgeReceipt)

	sellReceipt, err := o.ledger.ExecuteSwap(ctx, opp.TargetChain, SwapOrder{
		Chain:          opp.TargetChain,
		Venue:          opp.SellQuote.Venue,
		Pair:           opp.Pair,
		Side:           "sell",
		NotionalUSD:    opp.NotionalUSD,
		LimitPrice:     opp.SellQuote.Price,
		MaxSlippageBps: maxSlippageBps,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTransactionFailed, "sell leg")
	}
	receipts = append(receipts, sellReceipt)

	done := o.now()
	return &domain.ExecutionResult{
		OpportunityID:  opp.ID,
		Tier:           domain.TierReal,
		TransactionRef: sellReceipt.TxHash,
		Receipts:       receipts,
		RealizedPnlUSD: expectedNetPnlUSD,
		ElapsedMs:      done.Sub(start).Milliseconds(),
		CompletedAt:    done,
	}, nil
}

// executeRouted submits the trade to the routing engine and polls for
// settlement within a fixed budget.
func (o *Orchestrator) executeRouted(ctx context.Context, opp *marketDomain.Opportunity, expectedNetPnlUSD decimal.Decimal, start time.Time) (*domain.ExecutionResult, error) {
	req := RouteRequest{
		Pair:        opp.Pair,
		SourceChain: opp.SourceChain,
		TargetChain: opp.TargetChain,
		NotionalUSD: opp.NotionalUSD,
	}

	estimate, err := o.routing.Estimate(ctx, req)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRouteEstimateFailed, "route estimate")
	}
	o.logger.Debug(ctx, "route estimated",
		"id", opp.ID,
		"fee_usd", estimate.FeeUSD.Round(2).String(),
		"eta_seconds", estimate.EtaSeconds)

	plan, err := o.routing.Build(ctx, req)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRouteBuildFailed, "route build")
	}

	ref, err := o.routing.Submit(ctx, plan)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRouteSubmitFailed, "route submit")
	}

	for attempt := 0; attempt < o.config.SettlementAttempts; attempt++ {
		if err := o.sleep(ctx, o.config.SettlementInterval); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeSettlementTimeout, "settlement poll cancelled")
		}

		state, err := o.routing.Settlement(ctx, ref)
		if err != nil {
			o.logger.Debug(ctx, "settlement poll failed", "ref", ref, "attempt", attempt+1, "error", err)
			continue
		}

		switch state {
		case SettlementSettled:
			done := o.now()
			return &domain.ExecutionResult{
				OpportunityID:  opp.ID,
				Tier:           domain.TierRouted,
				TransactionRef: ref,
				RealizedPnlUSD: expectedNetPnlUSD,
				ElapsedMs:      done.Sub(start).Milliseconds(),
				CompletedAt:    done,
			}, nil
		case SettlementFailed:
			return nil, apperror.New(apperror.CodeSettlementFailed,
				apperror.WithContext("route "+ref))
		}
	}

	return nil, apperror.Timeout(apperror.CodeSettlementTimeout, "route "+ref)
}

// executeSimulated produces the terminal paper fill. It cannot fail.
func (o *Orchestrator) executeSimulated(opp *marketDomain.Opportunity, expectedNetPnlUSD decimal.Decimal, start time.Time, usedFallback bool) *domain.ExecutionResult {
	factor := dryRunPnlFactor
	if usedFallback {
		factor = fallbackPnlFactor
	}

	done := o.now()
	return &domain.ExecutionResult{
		OpportunityID:  opp.ID,
		Tier:           domain.TierSimulated,
		UsedFallback:   usedFallback,
		TransactionRef: "sim-" + opp.ID,
		RealizedPnlUSD: expectedNetPnlUSD.Mul(factor),
		ElapsedMs:      done.Sub(start).Milliseconds() + simulatedLatencyMs,
		CompletedAt:    done,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
