// Package risk implements the risk bounded context: guardrail
// validation and fee/PnL simulation.
package risk

import (
	"context"

	"github.com/arbizirq/arbizirq/business/risk/app"
	riskDI "github.com/arbizirq/arbizirq/business/risk/di"
	"github.com/arbizirq/arbizirq/internal/config"
	"github.com/arbizirq/arbizirq/internal/di"
	"github.com/arbizirq/arbizirq/internal/logger"
	"github.com/arbizirq/arbizirq/internal/monolith"
)

// Module implements the risk bounded context.
type Module struct{}

// RegisterServices registers all risk services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, riskDI.Validator, func(sr di.ServiceRegistry) *app.Validator {
		cfg := sr.Get("config").(*config.Config)
		return app.NewValidator(app.GuardrailsFromConfig(cfg.Guardrails))
	})

	di.RegisterToken(c, riskDI.Simulator, func(sr di.ServiceRegistry) *app.Simulator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewSimulator(app.GuardrailsFromConfig(cfg.Guardrails), log)
	})

	return nil
}

// Startup initializes the risk module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "risk module started")
	return nil
}
