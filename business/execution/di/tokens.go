// Package di declares the dependency injection tokens for the execution context.
package di

import (
	"github.com/arbizirq/arbizirq/business/execution/app"
	"github.com/arbizirq/arbizirq/internal/di"
)

// Public services (exposed to other modules)
var (
	Orchestrator = di.NewToken[*app.Orchestrator]("execution.Orchestrator")
)

// Private dependencies (internal to this module)
var (
	ChainLedger   = di.NewToken[app.ChainLedger]("execution:chainLedger")
	RoutingEngine = di.NewToken[app.RoutingEngine]("execution:routingEngine")
)

// GetOrchestrator resolves the execution orchestrator.
func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}

// GetChainLedger resolves the on-chain ledger. Nil when no wallet key
// is configured.
func GetChainLedger(c di.ServiceRegistry) app.ChainLedger {
	return di.GetToken(c, ChainLedger)
}

// GetRoutingEngine resolves the cross-chain routing engine.
func GetRoutingEngine(c di.ServiceRegistry) app.RoutingEngine {
	return di.GetToken(c, RoutingEngine)
}
