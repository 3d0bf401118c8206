package config

import (
	"errors"
	"log"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// AlertThresholds tunes the alert rules.
type AlertThresholds struct {
	LargeExpense decimal.Decimal
	LowBalance   decimal.Decimal
	// OverrunRatio is the expenses/revenue ratio above which a monthly
	// overrun becomes critical.
	OverrunRatio decimal.Decimal
	Retention    time.Duration
}

// Config holds application configuration
type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MigrationsPath string

	// OpsAPIKey guards operational endpoints such as /metrics.
	OpsAPIKey string

	// JWT
	JWTSecret        string
	JWTIssuer        string
	JWTExpirationDur time.Duration

	// Ledger
	Location             *time.Location
	SettlementMaxRetries int
	RateLimitPerMinute   int
	RateLimitBurst       int
	Alerts               AlertThresholds
}

var appConfig *Config

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_path", "ledgerbook.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "ledgerbook")
	v.SetDefault("db_password", "ledgerbook")
	v.SetDefault("db_name", "ledgerbook")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("ops_api_key", "")

	v.SetDefault("jwt_secret", "fallback-secret-key-for-dev-only")
	v.SetDefault("jwt_issuer", "ledgerbook-identity")
	v.SetDefault("jwt_expires_in", "24h")

	v.SetDefault("timezone", "UTC")
	v.SetDefault("settlement_max_retries", 1)
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("rate_limit_burst", 20)

	v.SetDefault("alert_large_expense_threshold", "50000")
	v.SetDefault("alert_low_balance_threshold", "10000")
	v.SetDefault("alert_overrun_ratio", "1.5")
	v.SetDefault("alert_retention", "2160h")
}

// Load loads configuration from an optional config.yaml in the working
// directory and from environment variables, which take precedence.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	config := &Config{
		Port:     v.GetString("port"),
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log_level"),

		DBDriver:   v.GetString("db_driver"),
		DBPath:     v.GetString("db_path"),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),

		MigrationsPath: v.GetString("migrations_path"),
		OpsAPIKey:      v.GetString("ops_api_key"),

		JWTSecret: v.GetString("jwt_secret"),
		JWTIssuer: v.GetString("jwt_issuer"),

		SettlementMaxRetries: v.GetInt("settlement_max_retries"),
		RateLimitPerMinute:   v.GetInt("rate_limit_per_minute"),
		RateLimitBurst:       v.GetInt("rate_limit_burst"),
	}

	config.JWTExpirationDur = parseDuration(v, "jwt_expires_in", 24*time.Hour)

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE value '%s', falling back to UTC\n", v.GetString("timezone"))
		loc = time.UTC
	}
	config.Location = loc

	if config.SettlementMaxRetries < 0 {
		config.SettlementMaxRetries = 0
	}

	config.Alerts = AlertThresholds{
		LargeExpense: parseDecimal(v, "alert_large_expense_threshold", decimal.NewFromInt(50000)),
		LowBalance:   parseDecimal(v, "alert_low_balance_threshold", decimal.NewFromInt(10000)),
		OverrunRatio: parseDecimal(v, "alert_overrun_ratio", decimal.RequireFromString("1.5")),
		Retention:    parseDuration(v, "alert_retention", 90*24*time.Hour),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", strings.ToUpper(key), raw, fallback)
		return fallback
	}
	return d
}

func parseDecimal(v *viper.Viper, key string, fallback decimal.Decimal) decimal.Decimal {
	raw := v.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", strings.ToUpper(key), raw, fallback)
		return fallback
	}
	return d
}
