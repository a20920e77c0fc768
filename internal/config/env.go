package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names recognized by Hermit.
const (
	EnvConfig    = "HERMIT_CONFIG"
	EnvDebug     = "DEBUG"
	EnvTestnet   = "TESTNET"
	EnvLoadAllIO = "HERMIT_LOAD_ALL_IO"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration. DEBUG raises the logging level to debug regardless of the
// file setting; TESTNET and HERMIT_LOAD_ALL_IO are surfaced as booleans for
// callers (network selection, IO adapter probing) to consult.
func ApplyEnvironment(cfg *Config) {
	if parseBool(os.Getenv(EnvDebug)) {
		cfg.Logging.Level = "debug"
	}
}

// Testnet reports whether TESTNET is set truthy in the environment.
func Testnet() bool {
	return parseBool(os.Getenv(EnvTestnet))
}

// LoadAllIO reports whether HERMIT_LOAD_ALL_IO is set truthy, requesting
// that every configured IO adapter be probed at startup instead of only the
// one named in configuration.
func LoadAllIO() bool {
	return parseBool(os.Getenv(EnvLoadAllIO))
}

// parseBool parses a boolean-ish environment variable value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
