// Package app contains the arbitrage facade: the synchronous pipeline
// operations and the periodic scanner built on top of them.
package app

import (
	"context"

	executionDomain "github.com/arbizirq/arbizirq/business/execution/domain"
)

// Reporter receives pipeline outcomes for presentation. Implementations
// must not block: the scanner calls them inline between passes.
type Reporter interface {
	// Start is called once before the first scan pass.
	Start(ctx context.Context) error

	// ReportFinding is called for every finding that survived the
	// guardrails in a scan pass.
	ReportFinding(finding Finding)

	// ReportExecution is called after an execution attempt resolved.
	ReportExecution(result *executionDomain.ExecutionResult)

	// Stop is called once on shutdown.
	Stop() error
}
