package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

type Config struct {
	// Storage
	DataDir      string
	UsersFile    string
	DataBackend  string
	SQLiteDBPath string

	// Accounts
	PasswordHash string
	BcryptCost   int

	// Reports
	BillReminderDays   int
	BillReminderPolicy string

	// AMQP (optional change notifications)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		DataDir:      getEnv("LEDGER_DATA_DIR", "./data"),
		UsersFile:    getEnv("LEDGER_USERS_FILE", "users.json"),
		DataBackend:  getEnv("DATA_BACKEND", "file"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		PasswordHash: getEnv("PASSWORD_HASH", "bcrypt"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),

		BillReminderDays:   getEnvInt("BILL_REMINDER_DAYS", 7),
		BillReminderPolicy: getEnv("BILL_REMINDER_POLICY", "upcoming"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// UsersPath returns the location of the shared account index.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, c.UsersFile)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.DataDir) == "" {
		errors = append(errors, "data directory cannot be empty")
	}
	if c.UsersFile == "" || strings.ContainsAny(c.UsersFile, `/\`) {
		errors = append(errors, fmt.Sprintf("invalid users file '%s': must be a plain file name", c.UsersFile))
	}

	validBackends := []string{"file", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	validHashes := []string{"bcrypt", "sha256"}
	if !slices.Contains(validHashes, c.PasswordHash) {
		errors = append(errors, fmt.Sprintf("invalid password hash '%s': must be one of %v", c.PasswordHash, validHashes))
	}
	if c.PasswordHash == "bcrypt" && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		errors = append(errors, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.BcryptCost))
	}

	if c.BillReminderDays < 1 || c.BillReminderDays > 365 {
		errors = append(errors, fmt.Sprintf("invalid bill reminder window %d: must be between 1 and 365 days", c.BillReminderDays))
	}

	validPolicies := []string{"upcoming", "overdue"}
	if !slices.Contains(validPolicies, c.BillReminderPolicy) {
		errors = append(errors, fmt.Sprintf("invalid bill reminder policy '%s': must be one of %v", c.BillReminderPolicy, validPolicies))
	}

	// AMQP is optional; only check it when configured
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
