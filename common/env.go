// Package common provides shared types and constants used by the warpalarm
// daemon and its clients.
package common

// Environment variable names for configuration.
const (
	// ConfigPathEnv points at the YAML config file.
	ConfigPathEnv = "WARPALARM_CONFIG"

	// ListenEnv overrides the daemon listen address.
	ListenEnv = "WARPALARM_LISTEN"

	// SecretEnv overrides the RPC bearer secret.
	SecretEnv = "WARPALARM_SECRET"

	// LabelModeEnv selects label extraction ("offset" or "strip").
	LabelModeEnv = "WARPALARM_LABEL_MODE"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "WARPALARM_DEBUG"
)
