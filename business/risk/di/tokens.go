// Package di declares the dependency injection tokens for the risk context.
package di

import (
	"github.com/arbizirq/arbizirq/business/risk/app"
	"github.com/arbizirq/arbizirq/internal/di"
)

// Public services (exposed to other modules)
var (
	Validator = di.NewToken[*app.Validator]("risk.Validator")
	Simulator = di.NewToken[*app.Simulator]("risk.Simulator")
)

// GetValidator resolves the guardrail validator.
func GetValidator(c di.ServiceRegistry) *app.Validator {
	return di.GetToken(c, Validator)
}

// GetSimulator resolves the fee/PnL simulator.
func GetSimulator(c di.ServiceRegistry) *app.Simulator {
	return di.GetToken(c, Simulator)
}
