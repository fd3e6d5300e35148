// Package di declares the dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/arbizirq/arbizirq/business/arbitrage/app"
	"github.com/arbizirq/arbizirq/internal/di"
)

// Public services (exposed to other modules)
var (
	Service = di.NewToken[*app.Service]("arbitrage.Service")
	Scanner = di.NewToken[*app.Scanner]("arbitrage.Scanner")
)

// Private dependencies (internal to this module)
var (
	Reporter = di.NewToken[app.Reporter]("arbitrage:reporter")
)

// GetService resolves the pipeline facade.
func GetService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, Service)
}

// GetScanner resolves the periodic scanner.
func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

// GetReporter resolves the output reporter.
func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
