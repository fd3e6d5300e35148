// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Indexer    IndexerConfig    `mapstructure:"indexer"`
	Chains     ChainsConfig     `mapstructure:"chains"`
	Scanner    ScannerConfig    `mapstructure:"scanner"`
	Guardrails GuardrailsConfig `mapstructure:"guardrails"`
	Execution  ExecutionConfig  `mapstructure:"execution"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
}

// IndexerConfig holds the DEX indexer endpoints.
type IndexerConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	StreamURL     string        `mapstructure:"stream_url"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxQuoteBatch int           `mapstructure:"max_quote_batch"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

// ChainsConfig holds per-chain RPC endpoints. Only chains listed in
// Enabled participate in scanning and execution.
type ChainsConfig struct {
	Enabled []string          `mapstructure:"enabled"`
	RPCURLs map[string]string `mapstructure:"rpc_urls"`
}

// RPCURL returns the RPC endpoint configured for chain, or "".
func (c *ChainsConfig) RPCURL(chain string) string {
	return c.RPCURLs[chain]
}

// IsEnabled reports whether chain participates in scanning.
func (c *ChainsConfig) IsEnabled(chain string) bool {
	for _, name := range c.Enabled {
		if name == chain {
			return true
		}
	}
	return false
}

// ScannerConfig holds the scan loop settings.
type ScannerConfig struct {
	Pairs        []string      `mapstructure:"pairs"`
	TradeSizeUSD float64       `mapstructure:"trade_size_usd"`
	Interval     time.Duration `mapstructure:"interval"`
	MaxResults   int           `mapstructure:"max_results"`
	AutoExecute  bool          `mapstructure:"auto_execute"`
}

// TradeSizeDecimal returns the trade size as decimal.Decimal.
func (c *ScannerConfig) TradeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TradeSizeUSD)
}

// GuardrailsConfig holds the risk thresholds applied before execution.
type GuardrailsConfig struct {
	MinNetPnlUSD    float64       `mapstructure:"min_net_pnl_usd"`
	MaxSlippageBps  float64       `mapstructure:"max_slippage_bps"`
	MinLiquidityUSD float64       `mapstructure:"min_liquidity_usd"`
	MaxQuoteAge     time.Duration `mapstructure:"max_quote_age"`
	MaxTradeSizeUSD float64       `mapstructure:"max_trade_size_usd"`
}

// MinNetPnlDecimal returns the minimum net profit as decimal.Decimal.
func (c *GuardrailsConfig) MinNetPnlDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinNetPnlUSD)
}

// MaxSlippageDecimal returns the slippage ceiling in bps as decimal.Decimal.
func (c *GuardrailsConfig) MaxSlippageDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxSlippageBps)
}

// MinLiquidityDecimal returns the liquidity floor as decimal.Decimal.
func (c *GuardrailsConfig) MinLiquidityDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinLiquidityUSD)
}

// MaxTradeSizeDecimal returns the per-trade cap as decimal.Decimal.
func (c *GuardrailsConfig) MaxTradeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxTradeSizeUSD)
}

// ExecutionConfig holds execution tier settings.
type ExecutionConfig struct {
	DryRun             bool          `mapstructure:"dry_run"`
	WalletKey          string        `mapstructure:"wallet_key"`
	RouterBaseURL      string        `mapstructure:"router_base_url"`
	RouterAPIKey       string        `mapstructure:"router_api_key"`
	SettlementAttempts int           `mapstructure:"settlement_attempts"`
	SettlementInterval time.Duration `mapstructure:"settlement_interval"`
	SubmitTimeout      time.Duration `mapstructure:"submit_timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("AZQ")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Config file is optional, env vars alone are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "AZQ_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "AZQ_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "AZQ_LOG_LEVEL", "LOG_LEVEL")

	// Indexer
	v.BindEnv("indexer.base_url", "AZQ_INDEXER_URL", "DEX_INDEXER_URL")
	v.BindEnv("indexer.stream_url", "AZQ_INDEXER_STREAM_URL", "DEX_INDEXER_STREAM_URL")
	v.BindEnv("indexer.api_key", "AZQ_INDEXER_API_KEY", "DEX_INDEXER_API_KEY")

	// Scanner
	v.BindEnv("scanner.pairs", "AZQ_PAIRS")
	v.BindEnv("scanner.trade_size_usd", "AZQ_TRADE_SIZE_USD")

	// Guardrails
	v.BindEnv("guardrails.min_net_pnl_usd", "AZQ_MIN_NET_PNL_USD")
	v.BindEnv("guardrails.max_slippage_bps", "AZQ_MAX_SLIPPAGE_BPS")
	v.BindEnv("guardrails.min_liquidity_usd", "AZQ_MIN_LIQUIDITY_USD")
	v.BindEnv("guardrails.max_trade_size_usd", "AZQ_MAX_TRADE_SIZE_USD")

	// Execution
	v.BindEnv("execution.dry_run", "AZQ_DRY_RUN", "DRY_RUN")
	v.BindEnv("execution.wallet_key", "AZQ_WALLET_KEY", "EXECUTOR_PRIVATE_KEY")
	v.BindEnv("execution.router_base_url", "AZQ_ROUTER_URL", "GUD_TRADE_API_URL")
	v.BindEnv("execution.router_api_key", "AZQ_ROUTER_API_KEY", "GUD_TRADE_API_KEY")

	// Telemetry
	v.BindEnv("telemetry.enabled", "AZQ_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "AZQ_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "AZQ_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbizirq")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)

	// Indexer defaults
	v.SetDefault("indexer.base_url", "https://dex-indexer.zircuit.com")
	v.SetDefault("indexer.timeout", "10s")
	v.SetDefault("indexer.max_quote_batch", 50)
	v.SetDefault("indexer.rate_per_second", 10)

	// Chain defaults
	v.SetDefault("chains.enabled", []string{"ethereum", "polygon", "zircuit", "arbitrum", "optimism"})

	// Scanner defaults
	v.SetDefault("scanner.pairs", []string{"WETH-USDC"})
	v.SetDefault("scanner.trade_size_usd", 10000)
	v.SetDefault("scanner.interval", "15s")
	v.SetDefault("scanner.max_results", 20)
	v.SetDefault("scanner.auto_execute", false)

	// Guardrail defaults
	v.SetDefault("guardrails.min_net_pnl_usd", 1)
	v.SetDefault("guardrails.max_slippage_bps", 50)
	v.SetDefault("guardrails.min_liquidity_usd", 10000)
	v.SetDefault("guardrails.max_quote_age", "30s")
	v.SetDefault("guardrails.max_trade_size_usd", 10000)

	// Execution defaults
	v.SetDefault("execution.dry_run", true)
	v.SetDefault("execution.router_base_url", "https://trade-api.gud.tech")
	v.SetDefault("execution.settlement_attempts", 30)
	v.SetDefault("execution.settlement_interval", "1s")
	v.SetDefault("execution.submit_timeout", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbizirq")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Indexer.BaseURL == "" {
		return fmt.Errorf("indexer.base_url is required")
	}
	if len(c.Chains.Enabled) == 0 {
		return fmt.Errorf("chains.enabled cannot be empty")
	}
	if len(c.Scanner.Pairs) == 0 {
		return fmt.Errorf("scanner.pairs cannot be empty")
	}
	if c.Scanner.TradeSizeUSD <= 0 {
		return fmt.Errorf("scanner.trade_size_usd must be positive")
	}
	if c.Guardrails.MaxSlippageBps < 0 {
		return fmt.Errorf("guardrails.max_slippage_bps cannot be negative")
	}
	if c.Guardrails.MaxTradeSizeUSD <= 0 {
		return fmt.Errorf("guardrails.max_trade_size_usd must be positive")
	}
	if !c.Execution.DryRun && c.Execution.WalletKey == "" {
		return fmt.Errorf("execution.wallet_key is required when dry_run is off")
	}
	return nil
}
