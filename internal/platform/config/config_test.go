package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Strategy:    StrategyHelm,
		HelmBin:     "helm",
		DyffBin:     "dyff",
		HTTPTimeout: 30 * time.Second,
		ProjectFile: ".chart-pin.yaml",
		GalaxyBin:   "ansible-galaxy",
	}
}

// clearEnv blanks every setting so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		KeyLogLevel, KeyLogFormat, KeyDryRun, KeyDirectories, KeyStrategy, KeyHelmBin, KeyDyffBin,
		KeyHTTPTimeout, KeyGitHubToken, KeyGitHubAppID, KeyGitHubInstallationID,
		KeyGitHubPrivateKey, KeyOTelEnabled, KeyProjectFile, KeyGalaxyPath,
		KeyPinPath, KeyPinKey, KeyGalaxyBin,
	} {
		t.Setenv(envName(key), "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func() Config
		wantErr string
	}{
		{
			name: "defaults",
			want: defaults,
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"LOG_LEVEL":    "DEBUG",
				"LOG_FORMAT":   "JSON",
				"DRY_RUN":      "true",
				"DIRECTORIES":  "apps, templates ,",
				"STRATEGY":     "index",
				"HTTP_TIMEOUT": "5s",
				"GITHUB_TOKEN": "ghp_test",
				"OTEL_ENABLED": "1",
				"PIN_KEY":      "revision",
			},
			want: func() Config {
				c := defaults()
				c.LogLevel = "debug"
				c.LogFormat = "json"
				c.DryRun = true
				c.Directories = []string{"apps", "templates"}
				c.Strategy = StrategyIndex
				c.HTTPTimeout = 5 * time.Second
				c.GitHubToken = "ghp_test"
				c.OTelEnabled = true
				c.PinKey = "revision"
				return c
			},
		},
		{
			name: "github app",
			env: map[string]string{
				"GITHUB_APP_ID":          "123456",
				"GITHUB_INSTALLATION_ID": "789012",
				"GITHUB_PRIVATE_KEY":     "pem",
			},
			want: func() Config {
				c := defaults()
				c.GitHubAppID = 123456
				c.GitHubInstallationID = 789012
				c.GitHubPrivateKey = "pem"
				return c
			},
		},
		{name: "invalid strategy", env: map[string]string{"STRATEGY": "oci"}, wantErr: `invalid STRATEGY "oci"`},
		{name: "invalid log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: `invalid LOG_LEVEL "loud"`},
		{name: "invalid log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: `invalid LOG_FORMAT "xml"`},
		{name: "invalid timeout", env: map[string]string{"HTTP_TIMEOUT": "soon"}, wantErr: "invalid HTTP_TIMEOUT"},
		{name: "zero timeout", env: map[string]string{"HTTP_TIMEOUT": "0s"}, wantErr: "must be positive"},
		{name: "invalid dry run", env: map[string]string{"DRY_RUN": "maybe"}, wantErr: "invalid DRY_RUN"},
		{
			name:    "partial github app",
			env:     map[string]string{"GITHUB_APP_ID": "123456"},
			wantErr: "GITHUB_INSTALLATION_ID is required",
		},
		{
			name:    "non-numeric app id",
			env:     map[string]string{"GITHUB_APP_ID": "abc", "GITHUB_INSTALLATION_ID": "1", "GITHUB_PRIVATE_KEY": "pem"},
			wantErr: `invalid GITHUB_APP_ID "abc"`,
		},
		{
			name:    "missing private key",
			env:     map[string]string{"GITHUB_APP_ID": "1", "GITHUB_INSTALLATION_ID": "2"},
			wantErr: "GITHUB_PRIVATE_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load(New())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want(), got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRATEGY", "index")
	t.Setenv("DRY_RUN", "false")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyStrategy, StrategyHelm, "")
	fs.Bool(KeyDryRun, false, "")
	fs.StringSlice(KeyDirectories, nil, "")
	fs.String(KeyHelmBin, "helm", "")
	require.NoError(t, fs.Parse([]string{"--strategy=helm", "--dry-run", "--directories=a,b"}))

	v := New()
	require.NoError(t, Bind(v, fs))

	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, StrategyHelm, got.Strategy)
	assert.True(t, got.DryRun)
	assert.Equal(t, []string{"a", "b"}, got.Directories)
	assert.Equal(t, "helm", got.HelmBin)
}

func TestGitHubAppAuth(t *testing.T) {
	assert.False(t, Config{}.GitHubAppAuth())
	assert.True(t, Config{GitHubAppID: 1}.GitHubAppAuth())
}
