package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Rate limiting
	RateLimitFormatted string // ulule/limiter format, e.g. "100-M"

	// Financial policy
	WithholdingTaxRate decimal.Decimal // Fraction of gross interest withheld
	VATRate            decimal.Decimal // Fraction applied to VATable fee lines
	FxFallbackRate     decimal.Decimal // NGN per USD when no stored rate exists
	DayCount           int             // Days per year for interest accrual

	// Settlement dispatcher
	SettlementPollInterval  time.Duration
	SettlementBatchSize     int
	SettlementMaxAttempts   int
	MaturitySweepInterval   time.Duration
	SettlementGatewayTarget string // Informational label for the wired gateway
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "pie-backend")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("WHT_RATE", "0.10")
	viper.SetDefault("VAT_RATE", "0.0075")
	viper.SetDefault("FX_FALLBACK_RATE", "1500")
	viper.SetDefault("DAY_COUNT", 365)
	viper.SetDefault("SETTLEMENT_POLL_INTERVAL", "5s")
	viper.SetDefault("SETTLEMENT_BATCH_SIZE", 25)
	viper.SetDefault("SETTLEMENT_MAX_ATTEMPTS", 8)
	viper.SetDefault("MATURITY_SWEEP_INTERVAL", "1h")
	viper.SetDefault("SETTLEMENT_GATEWAY", "log")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RateLimitFormatted = viper.GetString("RATE_LIMIT")

	var err error
	cfg.WithholdingTaxRate, err = decimal.NewFromString(viper.GetString("WHT_RATE"))
	if err != nil {
		log.Printf("Warning: Invalid value for WHT_RATE ('%s'). Defaulting to 0.10.\n", viper.GetString("WHT_RATE"))
		cfg.WithholdingTaxRate = decimal.NewFromFloat(0.10)
	}
	cfg.VATRate, err = decimal.NewFromString(viper.GetString("VAT_RATE"))
	if err != nil {
		log.Printf("Warning: Invalid value for VAT_RATE ('%s'). Defaulting to 0.0075.\n", viper.GetString("VAT_RATE"))
		cfg.VATRate = decimal.NewFromFloat(0.0075)
	}
	cfg.FxFallbackRate, err = decimal.NewFromString(viper.GetString("FX_FALLBACK_RATE"))
	if err != nil {
		log.Printf("Warning: Invalid value for FX_FALLBACK_RATE ('%s'). Defaulting to 1500.\n", viper.GetString("FX_FALLBACK_RATE"))
		cfg.FxFallbackRate = decimal.NewFromInt(1500)
	}

	cfg.DayCount = viper.GetInt("DAY_COUNT")
	if cfg.DayCount <= 0 {
		log.Println("Warning: DAY_COUNT must be positive. Defaulting to 365.")
		cfg.DayCount = 365
	}

	cfg.SettlementPollInterval = parseDurationOrDefault("SETTLEMENT_POLL_INTERVAL", 5*time.Second)
	cfg.SettlementBatchSize = viper.GetInt("SETTLEMENT_BATCH_SIZE")
	cfg.SettlementMaxAttempts = viper.GetInt("SETTLEMENT_MAX_ATTEMPTS")
	cfg.MaturitySweepInterval = parseDurationOrDefault("MATURITY_SWEEP_INTERVAL", time.Hour)
	cfg.SettlementGatewayTarget = viper.GetString("SETTLEMENT_GATEWAY")

	return cfg, nil
}

// parseDurationOrDefault reads a duration-valued key, falling back when unset
// or malformed.
func parseDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
