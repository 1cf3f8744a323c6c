// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config collects the recognized options. Policy constants (loan duration,
// fine rate) live here rather than in code so deployments and tests can vary
// them.
type Config struct {
	// Port the HTTP API listens on.
	Port string

	// DatabaseURL selects the durable Postgres ledger. Empty selects the
	// embedded in-process ledger.
	DatabaseURL string

	// LoanPeriodDays is the default loan duration when a borrow request
	// names none.
	LoanPeriodDays int

	// FinePerDay is the default fine rate for the overdue report.
	FinePerDay float64

	// OTLPEndpoint is the OTLP/HTTP trace collector. Empty disables export.
	OTLPEndpoint string
}

// Load reads configuration from the environment, applying defaults for
// anything unset. Malformed values are an error rather than a silent default.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LoanPeriodDays: 14,
		FinePerDay:     1,
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if raw := os.Getenv("LOAN_PERIOD_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("LOAN_PERIOD_DAYS must be a positive integer, got %q", raw)
		}
		cfg.LoanPeriodDays = days
	}

	if raw := os.Getenv("FINE_PER_DAY"); raw != "" {
		fine, err := strconv.ParseFloat(raw, 64)
		if err != nil || fine < 0 {
			return Config{}, fmt.Errorf("FINE_PER_DAY must be a non-negative number, got %q", raw)
		}
		cfg.FinePerDay = fine
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
