package domain

// Defaults for the collection build.
const (
	DefaultGalaxyPath = "galaxy.yml"
	DefaultPinPath    = "roles/components/defaults/main/argocd.yml"
	DefaultPinKey     = "rke2_argocd_apps_pokerops_revision"
)

// BuildTarget locates the collection manifest and the variable file whose
// pin must follow the collection version.
type BuildTarget struct {
	GalaxyPath string
	PinPath    string
	PinKey     string
}

// BuildResult describes one collection build.
type BuildResult struct {
	Version     string // collection version from the galaxy manifest
	PreviousPin string // pin value before the build
	PinUpdated  bool
	Diff        string // rendered pin file change, set when PinUpdated
	Output      string // packaging tool output
}

// PinPatch is the structural patch that sets a top-level key.
func PinPatch(key, version string) map[string]any {
	return map[string]any{key: version}
}
