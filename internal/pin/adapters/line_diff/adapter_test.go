package linediff

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiff(t *testing.T) {
	base := "---\nspec:\n  source:\n    chart: grafana\n    targetRevision: 8.5.1\n    repoURL: https://grafana.github.io/helm-charts\n"
	head := strings.Replace(base, "8.5.1", "8.6.0", 1)

	got := New().ComputeDiff(context.Background(), "grafana.yaml (8.5.1)", "grafana.yaml (8.6.0)", []byte(base), []byte(head))

	assert.Contains(t, got, "--- grafana.yaml (8.5.1)")
	assert.Contains(t, got, "+++ grafana.yaml (8.6.0)")
	assert.Contains(t, got, "-    targetRevision: 8.5.1")
	assert.Contains(t, got, "+    targetRevision: 8.6.0")
	assert.Contains(t, got, "     chart: grafana")
	assert.NotContains(t, got, "spec:", "context is limited to two lines")
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestComputeDiff_Identical(t *testing.T) {
	same := []byte("kind: Application\n")
	assert.Empty(t, New().ComputeDiff(context.Background(), "a", "b", same, same))
}
