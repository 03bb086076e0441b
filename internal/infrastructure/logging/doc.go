// Package logging provides structured logging for the Cozytouch bridge.
//
// It wraps log/slog with a JSON handler for production and a text handler
// for development. Every entry carries the service name and build version.
//
// Configuration lives in the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log the MQTT password or vendor account credentials.
package logging
