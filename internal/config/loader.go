package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".contactscan"

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "CONTACTSCAN_"

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .contactscan in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .contactscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyEnv overlays CONTACTSCAN_ variables onto cfg. Process environment wins
// over entries in envFile. A missing envFile is not an error.
func ApplyEnv(cfg *Config, envFile string) error {
	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("%w: %s: %w", ErrInvalidEnv, envFile, err)
		}
	}

	return applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	ints := map[string]*int{
		"WINDOW":     &cfg.Window,
		"WORKERS":    &cfg.Workers,
		"QUEUE_SIZE": &cfg.QueueSize,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, name, v)
			}
			*dst = n
		}
	}

	if v, ok := get("MIN_CONFIDENCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sMIN_CONFIDENCE=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		cfg.MinConfidence = f
	}

	bools := map[string]*bool{
		"HEADING_NAMES": &cfg.HeadingNames,
		"INFER_NAMES":   &cfg.InferNames,
		"INFER_COMPANY": &cfg.InferCompany,
		"STRICT":        &cfg.Strict,
		"VERBOSE":       &cfg.Verbose,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, name, v)
			}
			*dst = b
		}
	}

	if v, ok := get("VALIDATION_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sVALIDATION_TIMEOUT=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		cfg.ValidationTimeout = d
	}
	if v, ok := get("VALIDATOR"); ok {
		cfg.Validator = v
	}
	if v, ok := get("SITE"); ok {
		cfg.Site = v
	}
	if v, ok := get("DB_DIR"); ok {
		cfg.DBDir = v
	}
	return nil
}
