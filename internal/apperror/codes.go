package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Arbitrage pipeline error codes
const (
	// Quote aggregation errors
	CodeIndexerUnavailable Code = "INDEXER_UNAVAILABLE"
	CodeIndexerBadPayload  Code = "INDEXER_BAD_PAYLOAD"
	CodeQuoteStale         Code = "QUOTE_STALE"
	CodeInvalidQuote       Code = "INVALID_QUOTE"
	CodeNoQuotes           Code = "NO_QUOTES"

	// Guardrail violations
	CodeGuardrailViolation    Code = "GUARDRAIL_VIOLATION"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeSlippageExceeded      Code = "SLIPPAGE_EXCEEDED"
	CodeTradeSizeExceeded     Code = "TRADE_SIZE_EXCEEDED"
	CodeUnprofitable          Code = "UNPROFITABLE"

	// Chain/ledger errors
	CodeChainUnsupported      Code = "CHAIN_UNSUPPORTED"
	CodeChainConnectionFailed Code = "CHAIN_CONNECTION_FAILED"
	CodeChainRPCError         Code = "CHAIN_RPC_ERROR"
	CodeGasEstimationFailed   Code = "GAS_ESTIMATION_FAILED"
	CodeTransactionFailed     Code = "TRANSACTION_FAILED"
	CodeInsufficientAllowance Code = "INSUFFICIENT_ALLOWANCE"

	// Routing/bridge errors
	CodeRouteEstimateFailed Code = "ROUTE_ESTIMATE_FAILED"
	CodeRouteBuildFailed    Code = "ROUTE_BUILD_FAILED"
	CodeRouteSubmitFailed   Code = "ROUTE_SUBMIT_FAILED"
	CodeSettlementTimeout   Code = "SETTLEMENT_TIMEOUT"
	CodeSettlementFailed    Code = "SETTLEMENT_FAILED"

	// Execution errors
	CodeExecutionFailed  Code = "EXECUTION_FAILED"
	CodeOpportunityTaken Code = "OPPORTUNITY_TAKEN"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
