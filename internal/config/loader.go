package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	SQLiteDSN             string
	SQLiteBusyTimeout     time.Duration
	SummaryCacheTTL       time.Duration
	SecurityRole          string
	DefaultSemesterMonths int
	LogLevel              slog.Level
	LogFormat             string
}

// Load parses configuration values from the current process environment.
//
// Every value has a default; invalid entries are reported by name rather
// than silently falling back.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:             "file:booking.db",
		SQLiteBusyTimeout:     5 * time.Second,
		SummaryCacheTTL:       30 * time.Second,
		SecurityRole:          "security",
		DefaultSemesterMonths: 3,
		LogLevel:              slog.LevelInfo,
		LogFormat:             "json",
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_BUSY_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOOKING_SQLITE_BUSY_TIMEOUT")
		} else {
			cfg.SQLiteBusyTimeout = timeout
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_SUMMARY_CACHE_TTL")); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SUMMARY_CACHE_TTL")
		} else {
			cfg.SummaryCacheTTL = ttl
		}
	}

	if role := strings.TrimSpace(os.Getenv("BOOKING_SECURITY_ROLE")); role != "" {
		cfg.SecurityRole = role
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_SEMESTER_MONTHS")); value != "" {
		months, err := strconv.Atoi(value)
		if err != nil || months <= 0 {
			invalid = append(invalid, "BOOKING_SEMESTER_MONTHS")
		} else {
			cfg.DefaultSemesterMonths = months
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); value != "" {
		switch strings.ToLower(value) {
		case "debug":
			cfg.LogLevel = slog.LevelDebug
		case "info":
			cfg.LogLevel = slog.LevelInfo
		case "warn":
			cfg.LogLevel = slog.LevelWarn
		case "error":
			cfg.LogLevel = slog.LevelError
		default:
			invalid = append(invalid, "BOOKING_LOG_LEVEL")
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_LOG_FORMAT")); value != "" {
		switch strings.ToLower(value) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(value)
		default:
			invalid = append(invalid, "BOOKING_LOG_FORMAT")
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
