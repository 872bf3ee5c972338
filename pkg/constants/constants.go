// Package constants provides shared constants for the stake-distributor application.
package constants

import "time"

// Stake precision constants
const (
	// StakePrecisionPlaces is the number of decimal places every computed stake
	// is rounded up to before any further rounding (2 decimal places).
	StakePrecisionPlaces = 2

	// DefaultMaxPasses bounds the number of solver passes before giving up.
	DefaultMaxPasses = 10000
)

// Rounding mode names as they appear in configuration and API payloads.
const (
	// RoundingInteger rounds each stake up to the next whole unit.
	RoundingInteger = "integer"

	// RoundingExact keeps cents precision.
	RoundingExact = "exact"

	// DefaultRounding matches the behaviour of whole-unit betting terminals.
	DefaultRounding = RoundingInteger
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// HTTP server timeouts
const (
	// DefaultReadTimeout bounds reading a full request including an upload.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds writing a response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout bounds draining in-flight requests on shutdown.
	DefaultShutdownTimeout = 15 * time.Second
)
