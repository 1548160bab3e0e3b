// Package config provides chart-pin configuration from defaults,
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	projectfile "github.com/nathantilsley/chart-pin/internal/pin/adapters/project_file"
)

// Keys double as flag names. Environment variables are the upper-case
// form with dashes replaced by underscores (log-level -> LOG_LEVEL).
const (
	KeyLogLevel             = "log-level"
	KeyLogFormat            = "log-format"
	KeyDryRun               = "dry-run"
	KeyDirectories          = "directories"
	KeyStrategy             = "strategy"
	KeyHelmBin              = "helm-bin"
	KeyDyffBin              = "dyff-bin"
	KeyHTTPTimeout          = "http-timeout"
	KeyGitHubToken          = "github-token"
	KeyGitHubAppID          = "github-app-id"
	KeyGitHubInstallationID = "github-installation-id"
	KeyGitHubPrivateKey     = "github-private-key"
	KeyOTelEnabled          = "otel-enabled"
	KeyProjectFile          = "project-file"
	KeyGalaxyPath           = "galaxy-path"
	KeyPinPath              = "pin-path"
	KeyPinKey               = "pin-key"
	KeyGalaxyBin            = "galaxy-bin"
)

// Resolution strategies for classic HTTP chart repositories.
const (
	StrategyHelm  = "helm"
	StrategyIndex = "index"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel    string
	LogFormat   string // text or json
	DryRun      bool
	Directories []string // empty means the project file or built-in default
	Strategy    string
	HelmBin     string
	DyffBin     string
	HTTPTimeout time.Duration

	// GitHub release feed auth: a token, a GitHub App installation, or
	// neither for anonymous access.
	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM contents

	OTelEnabled bool
	ProjectFile string

	// Build paths; empty means the project file or built-in default.
	GalaxyPath string
	PinPath    string
	PinKey     string
	GalaxyBin  string
}

// GitHubAppAuth reports whether GitHub App credentials are configured.
func (c Config) GitHubAppAuth() bool {
	return c.GitHubAppID != 0
}

// New returns a viper instance with defaults set and environment lookup
// enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyStrategy, StrategyHelm)
	v.SetDefault(KeyHelmBin, "helm")
	v.SetDefault(KeyDyffBin, "dyff")
	v.SetDefault(KeyHTTPTimeout, "30s")
	v.SetDefault(KeyOTelEnabled, false)
	v.SetDefault(KeyProjectFile, projectfile.DefaultPath)
	v.SetDefault(KeyGalaxyBin, "ansible-galaxy")
	return v
}

// Bind makes the flags in fs override environment variables and defaults.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// Load reads and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogLevel:         strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:        strings.ToLower(v.GetString(KeyLogFormat)),
		Directories:      stringList(v, KeyDirectories),
		Strategy:         strings.ToLower(v.GetString(KeyStrategy)),
		HelmBin:          v.GetString(KeyHelmBin),
		DyffBin:          v.GetString(KeyDyffBin),
		GitHubToken:      v.GetString(KeyGitHubToken),
		GitHubPrivateKey: v.GetString(KeyGitHubPrivateKey),
		ProjectFile:      v.GetString(KeyProjectFile),
		GalaxyPath:       v.GetString(KeyGalaxyPath),
		PinPath:          v.GetString(KeyPinPath),
		PinKey:           v.GetString(KeyPinKey),
		GalaxyBin:        v.GetString(KeyGalaxyBin),
	}

	var err error
	if cfg.DryRun, err = parseBool(v, KeyDryRun); err != nil {
		return Config{}, err
	}
	if cfg.OTelEnabled, err = parseBool(v, KeyOTelEnabled); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = parseDuration(v, KeyHTTPTimeout); err != nil {
		return Config{}, err
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return Config{}, fmt.Errorf("invalid %s %q: want debug, info, warn or error", envName(KeyLogLevel), cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid %s %q: want text or json", envName(KeyLogFormat), cfg.LogFormat)
	}

	switch cfg.Strategy {
	case StrategyHelm, StrategyIndex:
	default:
		return Config{}, fmt.Errorf("invalid %s %q: want %s or %s", envName(KeyStrategy), cfg.Strategy, StrategyHelm, StrategyIndex)
	}

	if err := loadGitHubApp(v, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadGitHubApp accepts either none or all of the app credentials.
func loadGitHubApp(v *viper.Viper, cfg *Config) error {
	appID := v.GetString(KeyGitHubAppID)
	installationID := v.GetString(KeyGitHubInstallationID)
	if appID == "" && installationID == "" && cfg.GitHubPrivateKey == "" {
		return nil
	}

	var err error
	if cfg.GitHubAppID, err = parseRequiredInt64(KeyGitHubAppID, appID); err != nil {
		return err
	}
	if cfg.GitHubInstallationID, err = parseRequiredInt64(KeyGitHubInstallationID, installationID); err != nil {
		return err
	}
	if cfg.GitHubPrivateKey == "" {
		return errors.New(envName(KeyGitHubPrivateKey) + " is required for GitHub App auth")
	}
	return nil
}

func parseRequiredInt64(key, v string) (int64, error) {
	if v == "" {
		return 0, fmt.Errorf("%s is required for GitHub App auth", envName(key))
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envName(key), v, err)
	}
	return id, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	s := v.GetString(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", envName(key), s, err)
	}
	return b, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	s := v.GetString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envName(key), s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", envName(key), s)
	}
	return d, nil
}

// stringList accepts a comma separated environment value or a flag slice.
func stringList(v *viper.Viper, key string) []string {
	var parts []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(val, ",")
	default:
		parts = v.GetStringSlice(key)
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
