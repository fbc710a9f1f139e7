package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "api.base_url")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateShop()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must be an absolute http or https URL",
		})
	}

	if c.API.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Value:   c.API.Timeout,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	return errors
}

func (c *Config) validateShop() []ValidationError {
	var errors []ValidationError

	if len(c.Shop.PayTypes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "shop.pay_types",
			Value:   c.Shop.PayTypes,
			Message: "must list at least one payment channel",
		})
	}

	seen := make(map[string]bool, len(c.Shop.PayTypes))
	for i, p := range c.Shop.PayTypes {
		field := fmt.Sprintf("shop.pay_types[%d]", i)
		if !slices.Contains(ValidPayTypes(), p) {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   p,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidPayTypes(), ", ")),
			})
			continue
		}
		if seen[p] {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   p,
				Message: "duplicate payment channel",
			})
		}
		seen[p] = true
	}

	if c.Shop.ContactType <= 0 {
		errors = append(errors, ValidationError{
			Field:   "shop.contact_type",
			Value:   c.Shop.ContactType,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.CopyFeedbackMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.copy_feedback_ms",
			Value:   c.TUI.CopyFeedbackMs,
			Message: "must be non-negative",
		})
	}

	const maxCopyFeedbackMs = 60000
	if c.TUI.CopyFeedbackMs > maxCopyFeedbackMs {
		errors = append(errors, ValidationError{
			Field:   "tui.copy_feedback_ms",
			Value:   c.TUI.CopyFeedbackMs,
			Message: fmt.Sprintf("exceeds maximum of %d", maxCopyFeedbackMs),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
