package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	executionApp "github.com/arbizirq/arbizirq/business/execution/app"
	executionDomain "github.com/arbizirq/arbizirq/business/execution/domain"
	marketApp "github.com/arbizirq/arbizirq/business/market/app"
	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	riskApp "github.com/arbizirq/arbizirq/business/risk/app"
	riskDomain "github.com/arbizirq/arbizirq/business/risk/domain"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/logger"
)

// Finding is one opportunity that cleared simulation and validation
// during a scan pass, together with both verdicts.
type Finding struct {
	Opportunity *marketDomain.Opportunity
	Simulation  riskDomain.SimulationResult
	Validation  riskDomain.ValidationResult
}

// Service is the synchronous pipeline facade. Each operation runs one
// stage chain end to end: Scan covers aggregation through validation,
// Execute adds the tiered execution on top.
type Service struct {
	aggregator   *marketApp.Aggregator
	detector     *marketApp.Detector
	simulator    *riskApp.Simulator
	validator    *riskApp.Validator
	orchestrator *executionApp.Orchestrator
	logger       logger.LoggerInterface
}

// NewService wires the facade from the three context services.
func NewService(
	aggregator *marketApp.Aggregator,
	detector *marketApp.Detector,
	simulator *riskApp.Simulator,
	validator *riskApp.Validator,
	orchestrator *executionApp.Orchestrator,
	log logger.LoggerInterface,
) *Service {
	return &Service{
		aggregator:   aggregator,
		detector:     detector,
		simulator:    simulator,
		validator:    validator,
		orchestrator: orchestrator,
		logger:       log,
	}
}

// Scan aggregates quotes for each pair across chains, detects
// cross-chain opportunities and keeps the ones that clear simulation,
// validation and the caller's profit floor. The profit floor applies
// to gross PnL and findings come back sorted by gross PnL, best
// first. Surviving opportunities are left in the simulated status,
// ready for Execute.
func (s *Service) Scan(ctx context.Context, pairs []marketDomain.Pair, chains []marketDomain.Chain, minProfitUSD, maxSlippageBps decimal.Decimal) ([]Finding, error) {
	if len(pairs) == 0 || len(chains) == 0 {
		return nil, apperror.Validation(apperror.CodeValidationError, "scan needs at least one pair and one chain")
	}

	simulator := s.simulator.WithMaxSlippageBps(maxSlippageBps)
	validator := s.validator.WithMaxSlippageBps(maxSlippageBps)

	var findings []Finding
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return findings, err
		}

		quotes := s.aggregator.GetQuotes(ctx, pair, chains)
		opportunities := s.detector.Detect(ctx, quotes)

		for _, opp := range opportunities {
			sim := simulator.Simulate(ctx, opp)
			validation := validator.Validate(opp, &sim)

			if !sim.OK || !validation.IsValid {
				s.logger.Debug(ctx, "opportunity rejected",
					"id", opp.ID,
					"ok", sim.OK,
					"errors", strings.Join(validation.Errors, "; "))
				continue
			}
			if opp.GrossPnlUSD.LessThan(minProfitUSD) {
				continue
			}

			if err := opp.TransitionTo(marketDomain.StatusSimulated); err != nil {
				s.logger.Warn(ctx, "skipping opportunity in unexpected status",
					"id", opp.ID, "status", string(opp.Status))
				continue
			}

			findings = append(findings, Finding{
				Opportunity: opp,
				Simulation:  sim,
				Validation:  validation,
			})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Opportunity.GrossPnlUSD.GreaterThan(findings[j].Opportunity.GrossPnlUSD)
	})

	s.logger.Info(ctx, "scan pass complete",
		"pairs", len(pairs),
		"chains", len(chains),
		"findings", len(findings))

	return findings, nil
}

// Simulate runs the fee and PnL simulation for one opportunity and
// advances it to the simulated status when the result is viable.
func (s *Service) Simulate(ctx context.Context, opp *marketDomain.Opportunity, maxSlippageBps decimal.Decimal) (riskDomain.SimulationResult, error) {
	if opp == nil {
		return riskDomain.SimulationResult{}, apperror.Validation(apperror.CodeValidationError, "opportunity is nil")
	}

	sim := s.simulator.WithMaxSlippageBps(maxSlippageBps).Simulate(ctx, opp)

	if sim.OK && opp.Status == marketDomain.StatusNew {
		if err := opp.TransitionTo(marketDomain.StatusSimulated); err != nil {
			return sim, err
		}
	}
	return sim, nil
}

// Execute re-simulates, re-validates and then drives the opportunity
// through the execution tiers. A guardrail violation aborts before any
// tier runs; after that point the orchestrator guarantees a terminal
// status.
func (s *Service) Execute(ctx context.Context, opp *marketDomain.Opportunity, maxSlippageBps decimal.Decimal, dryRun bool) (*executionDomain.ExecutionResult, error) {
	if opp == nil {
		return nil, apperror.Validation(apperror.CodeValidationError, "opportunity is nil")
	}

	sim, err := s.Simulate(ctx, opp, maxSlippageBps)
	if err != nil {
		return nil, err
	}

	validation := s.validator.WithMaxSlippageBps(maxSlippageBps).Validate(opp, &sim)
	if !sim.OK || !validation.IsValid {
		reasons := append(append([]string{}, validation.Errors...), sim.Notes...)
		return nil, apperror.New(apperror.CodeGuardrailViolation,
			apperror.WithContext(strings.Join(reasons, "; ")))
	}

	start := time.Now()
	result, err := s.orchestrator.Execute(ctx, opp, sim.NetPnlUSD, maxSlippageBps, dryRun)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "execution resolved",
		"id", opp.ID,
		"tier", string(result.Tier),
		"fallback", result.UsedFallback,
		"pnl_usd", result.RealizedPnlUSD.String(),
		"took", time.Since(start).String())

	return result, nil
}
