package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

type stubResolver struct {
	version string
	calls   int
}

func (s *stubResolver) Resolve(_ context.Context, c domain.Classification) (domain.ResolvedVersion, error) {
	s.calls++
	return domain.ResolvedVersion{Chart: c.Source.Chart, Version: s.version}, nil
}

func TestDispatcher_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		kind        domain.SourceKind
		wantVersion string
		wantHTTP    int
		wantFeed    int
		wantErr     bool
	}{
		{name: "http indexed", kind: domain.SourceHTTPIndexed, wantVersion: "1.0.0", wantHTTP: 1},
		{name: "oci github backed", kind: domain.SourceOCIGitHubBacked, wantVersion: "v2.0.0", wantFeed: 1},
		{name: "unsupported", kind: domain.SourceUnsupported, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpR := &stubResolver{version: "1.0.0"}
			feedR := &stubResolver{version: "v2.0.0"}
			d := NewDispatcher(httpR, feedR)

			got, err := d.Resolve(context.Background(), domain.Classification{
				Kind:   tt.kind,
				Source: domain.ChartSource{RepoURL: "oci://unknown/x", Chart: "x"},
			})

			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnsupportedSource) {
					t.Errorf("expected ErrUnsupportedSource, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if httpR.calls != tt.wantHTTP || feedR.calls != tt.wantFeed {
				t.Errorf("calls http=%d feed=%d, want http=%d feed=%d", httpR.calls, feedR.calls, tt.wantHTTP, tt.wantFeed)
			}
		})
	}
}
