package domain

import "github.com/shopspring/decimal"

// SimulationResult is the pure outcome of a fee/PnL simulation.
type SimulationResult struct {
	NetPnlUSD   decimal.Decimal
	OK          bool
	Breakdown   FeeBreakdown
	SlippageBps decimal.Decimal
	Notes       []string
}

// AddNote appends an explanatory note to the result.
func (r *SimulationResult) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}

// ValidationResult is the outcome of guardrail validation. Errors make
// the opportunity invalid; warnings degrade its health score only.
type ValidationResult struct {
	IsValid  bool
	Score    int // 0-100 health score
	Errors   []string
	Warnings []string
}

// AddError records a violation and invalidates the result.
func (v *ValidationResult) AddError(msg string) {
	v.Errors = append(v.Errors, msg)
	v.IsValid = false
}

// AddWarning records a non-fatal concern.
func (v *ValidationResult) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}
