// Package config handles loading and validating the Cozytouch bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with COZYTOUCH_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Sensitive values (MQTT password) should be set via environment variables
// and the config file should have restricted permissions (0600).
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Bridge.Name)
package config
