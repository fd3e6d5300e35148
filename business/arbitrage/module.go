// Package arbitrage implements the arbitrage bounded context: the
// synchronous pipeline facade and the periodic scan loop.
package arbitrage

import (
	"context"

	"github.com/arbizirq/arbizirq/business/arbitrage/app"
	arbitrageDI "github.com/arbizirq/arbizirq/business/arbitrage/di"
	"github.com/arbizirq/arbizirq/business/arbitrage/infra"
	executionDI "github.com/arbizirq/arbizirq/business/execution/di"
	marketDI "github.com/arbizirq/arbizirq/business/market/di"
	marketDomain "github.com/arbizirq/arbizirq/business/market/domain"
	riskDI "github.com/arbizirq/arbizirq/business/risk/di"
	"github.com/arbizirq/arbizirq/internal/config"
	"github.com/arbizirq/arbizirq/internal/di"
	"github.com/arbizirq/arbizirq/internal/logger"
	"github.com/arbizirq/arbizirq/internal/monolith"
)

// Module implements the arbitrage bounded context. It depends on the
// market, risk and execution modules being registered first.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register reporter - private dependency
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		return infra.NewConsoleReporter()
	})

	// Register pipeline facade - public service
	di.RegisterToken(c, arbitrageDI.Service, func(sr di.ServiceRegistry) *app.Service {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewService(
			marketDI.GetAggregator(sr),
			marketDI.GetDetector(sr),
			riskDI.GetSimulator(sr),
			riskDI.GetValidator(sr),
			executionDI.GetOrchestrator(sr),
			log,
		)
	})

	// Register scanner - public service
	di.RegisterToken(c, arbitrageDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		scannerCfg, err := scannerConfigFrom(cfg)
		if err != nil {
			panic("failed to build scanner config: " + err.Error())
		}

		return app.NewScanner(
			arbitrageDI.GetService(sr),
			arbitrageDI.GetReporter(sr),
			scannerCfg,
			log,
		)
	})

	return nil
}

// Startup launches the periodic scanner.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	scanner := arbitrageDI.GetScanner(mono.Services())
	if err := scanner.Start(ctx); err != nil {
		return err
	}
	mono.Logger().Info(ctx, "arbitrage module started")
	return nil
}

// scannerConfigFrom parses the configured pairs and chains into domain
// types. An unknown chain or malformed pair fails startup outright
// rather than being silently skipped.
func scannerConfigFrom(cfg *config.Config) (app.ScannerConfig, error) {
	pairs := make([]marketDomain.Pair, 0, len(cfg.Scanner.Pairs))
	for _, raw := range cfg.Scanner.Pairs {
		pair, err := marketDomain.ParsePair(raw)
		if err != nil {
			return app.ScannerConfig{}, err
		}
		pairs = append(pairs, pair)
	}

	chains := make([]marketDomain.Chain, 0, len(cfg.Chains.Enabled))
	for _, raw := range cfg.Chains.Enabled {
		chain, err := marketDomain.ParseChain(raw)
		if err != nil {
			return app.ScannerConfig{}, err
		}
		chains = append(chains, chain)
	}

	return app.ScannerConfig{
		Pairs:          pairs,
		Chains:         chains,
		Interval:       cfg.Scanner.Interval,
		MaxResults:     cfg.Scanner.MaxResults,
		MinProfitUSD:   cfg.Guardrails.MinNetPnlDecimal(),
		MaxSlippageBps: cfg.Guardrails.MaxSlippageDecimal(),
		AutoExecute:    cfg.Scanner.AutoExecute,
		DryRun:         cfg.Execution.DryRun,
	}, nil
}
