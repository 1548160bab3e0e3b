package api

// ProjectFile is the top-level schema of the optional .chart-pin.yaml file
// at the root of the repository being reconciled.
type ProjectFile struct {
	// Directories scanned for Application manifests. Command line
	// arguments and DIRECTORIES take precedence.
	Directories []string `yaml:"directories"`
	// OCISources replaces the built-in table of OCI chart locators that
	// are resolved through GitHub releases.
	OCISources []OCISource `yaml:"ociSources"`
	Build      *Build      `yaml:"build"`
}

// OCISource maps a known project to the registry directory its chart is
// published under: oci://ghcr.io/<owner>/<chartsDir>/<project>.
type OCISource struct {
	Project   string `yaml:"project"`
	ChartsDir string `yaml:"chartsDir"`
}

// Build overrides the collection build paths.
type Build struct {
	GalaxyPath string `yaml:"galaxyPath"`
	PinPath    string `yaml:"pinPath"`
	PinKey     string `yaml:"pinKey"`
}
