package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Quote aggregation errors
	CodeIndexerUnavailable: "DEX indexer is unavailable",
	CodeIndexerBadPayload:  "DEX indexer returned a malformed payload",
	CodeQuoteStale:         "Quote is older than the freshness window",
	CodeInvalidQuote:       "Invalid quote data",
	CodeNoQuotes:           "No quotes available for pair",

	// Guardrail violations
	CodeGuardrailViolation:    "Opportunity rejected by guardrails",
	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",
	CodeSlippageExceeded:      "Expected slippage exceeds the configured maximum",
	CodeTradeSizeExceeded:     "Trade size exceeds the per-trade cap",
	CodeUnprofitable:          "Net profit after fees is not positive",

	// Chain/ledger errors
	CodeChainUnsupported:      "Chain is not supported",
	CodeChainConnectionFailed: "Failed to connect to chain RPC node",
	CodeChainRPCError:         "Chain RPC call failed",
	CodeGasEstimationFailed:   "Gas estimation failed",
	CodeTransactionFailed:     "Transaction reverted or failed",
	CodeInsufficientAllowance: "Token allowance is insufficient",

	// Routing/bridge errors
	CodeRouteEstimateFailed: "Cross-chain route estimation failed",
	CodeRouteBuildFailed:    "Cross-chain route build failed",
	CodeRouteSubmitFailed:   "Cross-chain route submission failed",
	CodeSettlementTimeout:   "Settlement did not complete within the polling budget",
	CodeSettlementFailed:    "Settlement failed on the target chain",

	// Execution errors
	CodeExecutionFailed:  "Execution failed on all tiers",
	CodeOpportunityTaken: "Opportunity is no longer available",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
