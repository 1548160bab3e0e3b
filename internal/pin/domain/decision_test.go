package domain

import (
	"reflect"
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		pinned   string
		resolved *ResolvedVersion
		want     Decision
	}{
		{
			name:   "resolution failed",
			pinned: "1.0.0",
			want:   Skip(ReasonFetchError),
		},
		{
			name:     "already current",
			pinned:   "1.2.3",
			resolved: &ResolvedVersion{Chart: "app", Version: "1.2.3"},
			want:     Skip(ReasonUpToDate),
		},
		{
			name:     "newer version",
			pinned:   "1.2.3",
			resolved: &ResolvedVersion{Chart: "app", Version: "1.3.0"},
			want:     Apply("1.3.0"),
		},
		{
			name:     "no semantic normalization",
			pinned:   "1.2.3",
			resolved: &ResolvedVersion{Chart: "app", Version: "v1.2.3"},
			want:     Apply("v1.2.3"),
		},
		{
			name:     "default HEAD pin",
			pinned:   DefaultTargetRevision,
			resolved: &ResolvedVersion{Chart: "app", Version: "0.1.0"},
			want:     Apply("0.1.0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.pinned, tt.resolved)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTargetRevisionPatch(t *testing.T) {
	got := TargetRevisionPatch("2.0.0")
	spec, ok := got["spec"].(map[string]any)
	if !ok {
		t.Fatalf("spec missing: %v", got)
	}
	source, ok := spec["source"].(map[string]any)
	if !ok {
		t.Fatalf("spec.source missing: %v", got)
	}
	if source["targetRevision"] != "2.0.0" {
		t.Errorf("targetRevision = %v, want 2.0.0", source["targetRevision"])
	}
}
