package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"argus-settings/internal/common/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Env is a read-only view over the configured value sources.
type Env struct {
	v   *viper.Viper
	log logger.Logger
}

// NewEnv assembles an Env from opts.
func NewEnv(opts Options) (*Env, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	v := viper.New()

	if !opts.SkipEnvFile {
		dotenv, path, err := loadEnvFile(opts.EnvFile)
		if err != nil {
			return nil, err
		}
		if path != "" {
			log.Debug("loaded .env file", map[string]interface{}{"path": path, "keys": len(dotenv)})
		}
		// .env values never override the real environment.
		for k, val := range dotenv {
			v.SetDefault(k, val)
		}
	}

	if opts.ValuesFile != "" {
		v.SetConfigFile(opts.ValuesFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading values file %s: %w", opts.ValuesFile, err)
		}
		log.Debug("loaded values file", map[string]interface{}{"path": opts.ValuesFile})
	}

	if !opts.SkipProcessEnv {
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}

	for k, val := range opts.Values {
		v.Set(k, val)
	}

	return &Env{v: v, log: log}, nil
}

// NewEnvFromMap returns an Env backed only by values. Intended for tests.
func NewEnvFromMap(values map[string]string) *Env {
	env, _ := NewEnv(Options{
		Values:         values,
		SkipEnvFile:    true,
		SkipProcessEnv: true,
	})
	return env
}

// loadEnvFile reads a .env file without touching the process environment. An
// explicit path must exist; otherwise the candidates are searched and the first
// hit wins.
func loadEnvFile(explicit string) (map[string]string, string, error) {
	if explicit != "" {
		values, err := godotenv.Read(explicit)
		if err != nil {
			return nil, "", fmt.Errorf("error reading env file %s: %w", explicit, err)
		}
		return values, explicit, nil
	}

	possiblePaths := append([]string{}, envFileCandidates...)
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, "", fmt.Errorf("error reading env file %s: %w", path, err)
		}
		return values, path, nil
	}
	return nil, "", nil
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
