package projectfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    Project
	}{
		{name: "missing file", want: Defaults()},
		{name: "empty file", content: ptr(""), want: Defaults()},
		{
			name: "full",
			content: ptr(`directories: [apps]
ociSources:
  - project: external-secrets
    chartsDir: charts
build:
  pinPath: defaults/argocd.yml
`),
			want: Project{
				Directories: []string{"apps"},
				OCISources:  []domain.OCISource{{Project: "external-secrets", ChartsDir: "charts"}},
				Build: domain.BuildTarget{
					GalaxyPath: domain.DefaultGalaxyPath,
					PinPath:    "defaults/argocd.yml",
					PinKey:     domain.DefaultPinKey,
				},
			},
		},
		{
			name:    "empty table disables OCI sources",
			content: ptr("ociSources: []\n"),
			want: Project{
				OCISources: []domain.OCISource{},
				Build:      Defaults().Build,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.content != nil {
				require.NoError(t, afero.WriteFile(fs, DefaultPath, []byte(*tt.content), 0o644))
			}
			got, err := Load(fs, DefaultPath)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, DefaultPath, []byte("ociSource:\n  - project: x\n"), 0o644))

	_, err := Load(fs, DefaultPath)
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))
	assert.Contains(t, err.Error(), "ociSource")
}

func ptr(s string) *string { return &s }
