// Package config provides the environment source that settings modules read
// their values from: process environment, an optional .env file and an
// optional YAML values file.
package config

import "argus-settings/internal/common/logger"

// SettingsModuleEnvVar names the variable that selects the settings module when
// no module is given explicitly.
const SettingsModuleEnvVar = "ARGUS_SETTINGS_MODULE"

// Options controls how an Env is assembled.
//
// Precedence, highest first: Values, process environment, ValuesFile, .env file.
type Options struct {
	// EnvFile is an explicit .env path. When empty the usual locations are
	// searched and a missing file is not an error.
	EnvFile string
	// SkipEnvFile disables .env loading entirely.
	SkipEnvFile bool
	// ValuesFile is an optional YAML file of NAME: value pairs.
	ValuesFile string
	// Values are explicit overrides, mostly for tests.
	Values map[string]string
	// SkipProcessEnv ignores the process environment.
	SkipProcessEnv bool
	Logger         logger.Logger
}

// envFileCandidates are searched, in order, when Options.EnvFile is empty.
var envFileCandidates = []string{
	".env",
	"../.env",
	"../../.env",
}
