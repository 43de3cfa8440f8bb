package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that required configuration is present. AI keys
// are validated per provider so a single-provider deployment still boots.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must be set"}.Error())
	}
	if cfg.DeepSeekAPIKey == "" && cfg.OpenAIAPIKey == "" {
		errs = append(errs, ValidationError{Field: "DEEPSEEK_API_KEY/OPENAI_API_KEY", Message: "at least one provider key must be set"}.Error())
	}
	if IsProduction() && cfg.DBPassword == "" {
		errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "must be set in production"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
