// Package execution implements the execution bounded context: the
// tiered execution orchestrator and its on-chain and routing backends.
package execution

import (
	"context"

	"github.com/arbizirq/arbizirq/business/execution/app"
	executionDI "github.com/arbizirq/arbizirq/business/execution/di"
	"github.com/arbizirq/arbizirq/business/execution/infra/ethereum"
	"github.com/arbizirq/arbizirq/business/execution/infra/gud"
	"github.com/arbizirq/arbizirq/internal/asset"
	"github.com/arbizirq/arbizirq/internal/config"
	"github.com/arbizirq/arbizirq/internal/di"
	"github.com/arbizirq/arbizirq/internal/logger"
	"github.com/arbizirq/arbizirq/internal/monolith"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register chain ledger - private dependency. Nil without a wallet
	// key: the orchestrator then skips the real tier entirely.
	di.RegisterToken(c, executionDI.ChainLedger, func(sr di.ServiceRegistry) app.ChainLedger {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Execution.WalletKey == "" {
			return nil
		}

		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		ledger, err := ethereum.NewLedger(ethereum.Config{
			RPCURLs:      cfg.Chains.RPCURLs,
			WalletKeyHex: cfg.Execution.WalletKey,
		}, registry, log)
		if err != nil {
			panic("failed to create chain ledger: " + err.Error())
		}
		return ledger
	})

	// Register routing engine - private dependency
	di.RegisterToken(c, executionDI.RoutingEngine, func(sr di.ServiceRegistry) app.RoutingEngine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := gud.DefaultConfig(cfg.Execution.RouterBaseURL)
		clientCfg.APIKey = cfg.Execution.RouterAPIKey
		if cfg.Execution.SubmitTimeout > 0 {
			clientCfg.Timeout = cfg.Execution.SubmitTimeout
		}

		client, err := gud.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create gud client: " + err.Error())
		}
		return gud.NewEngine(client)
	})

	// Register orchestrator - public service
	di.RegisterToken(c, executionDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		ledger := executionDI.GetChainLedger(sr)
		routing := executionDI.GetRoutingEngine(sr)

		return app.NewOrchestrator(ledger, routing, app.OrchestratorConfig{
			DryRun:             cfg.Execution.DryRun,
			SettlementAttempts: cfg.Execution.SettlementAttempts,
			SettlementInterval: cfg.Execution.SettlementInterval,
		}, log)
	})

	return nil
}

// Startup initializes the execution module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()

	mode := "live"
	if cfg.Execution.DryRun {
		mode = "dry-run"
	}
	if cfg.Execution.WalletKey == "" {
		mono.Logger().Warn(ctx, "no wallet key configured, real execution tier disabled")
	}

	mono.Logger().Info(ctx, "execution module started", "mode", mode)
	return nil
}
