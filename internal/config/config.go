package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"campaigner/internal/constants"
	"campaigner/internal/errors"
	"campaigner/internal/models"
	"campaigner/internal/security"
)

func LoadConfig(path string) (*models.Config, error) {
	// Validate config file path to prevent directory traversal
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *models.Config) {
	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.DispatchIntervalSec <= 0 {
		c.Server.DispatchIntervalSec = constants.DefaultDispatchIntervalSec
	}
	if c.Channel.Timeout <= 0 {
		c.Channel.Timeout = constants.DefaultChannelTimeoutSec * time.Second
	}
	if c.Channel.RetryCount <= 0 {
		c.Channel.RetryCount = constants.DefaultChannelRetryCount
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
	if len(c.Window.ActiveDays) == 0 {
		c.Window.ActiveDays = []int{1, 2, 3, 4, 5}
	}
	if c.Window.EndTime == 0 {
		c.Window.StartTime = constants.DefaultWindowStartMinute
		c.Window.EndTime = constants.DefaultWindowEndMinute
		c.Window.IsActive = true
	}
	if c.Window.MessageInterval <= 0 {
		c.Window.MessageInterval = constants.DefaultMessageIntervalSec
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("CHANNEL_API_URL"); url != "" {
		c.Channel.APIBaseURL = url
	}
	if url := os.Getenv("CHANNEL_EVENTS_URL"); url != "" {
		c.Channel.EventsURL = url
	}

	// SECURITY: API keys should be set via environment variables
	if key := os.Getenv("CAMPAIGNER_CHANNEL_API_KEY"); key != "" {
		c.Channel.APIKey = key
	}

	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

func validate(c *models.Config) error {
	if c.Channel.APIBaseURL == "" {
		return errors.NewConfigError("channel.api_base_url", "missing channel API URL")
	}
	if c.Database.Path == "" {
		return errors.NewConfigError("database.path", "missing database path")
	}
	if err := c.Window.Validate(); err != nil {
		return errors.NewConfigError("window", err.Error())
	}

	isProduction := os.Getenv("CAMPAIGNER_ENV") == "production"
	if isProduction {
		if c.Channel.APIKey == "" {
			return errors.NewConfigError("channel.api_key",
				"channel API key is required in production (set CAMPAIGNER_CHANNEL_API_KEY environment variable)")
		}
		if c.LogLevel == "debug" {
			return errors.NewConfigError("log_level", "debug logging should not be used in production")
		}
	} else if c.Channel.APIKey == "" {
		fmt.Fprintf(os.Stderr, "WARNING: channel API key not set. Set CAMPAIGNER_CHANNEL_API_KEY environment variable for security.\n")
	}

	return nil
}
