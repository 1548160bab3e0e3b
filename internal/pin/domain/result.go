package domain

// Status represents the outcome of reconciling one manifest.
type Status int

const (
	StatusCurrent Status = iota // Pinned version is already the latest
	StatusUpdated               // targetRevision rewritten
	StatusPlanned               // Update found but not written (dry run)
	StatusSkipped               // Resolution failed or source unsupported
	StatusFailed                // Malformed manifest or patch failure
)

// String returns the string representation of the Status.
// Implements the Stringer interface.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Unknown"
	}
	return statusNames[s]
}

var statusNames = [...]string{
	StatusCurrent: "Current",
	StatusUpdated: "Updated",
	StatusPlanned: "Planned",
	StatusSkipped: "Skipped",
	StatusFailed:  "Failed",
}

// Result is the per-manifest record of a reconciliation pass.
type Result struct {
	Path       string
	Chart      string
	OldVersion string
	NewVersion string
	Status     Status
	Reason     string // skip reason or error message
	Diff       string // rendered change, set for Updated and Planned
}

// Report collects the results of one pass in processing order.
type Report struct {
	DryRun  bool
	Results []Result
}

// Counts returns the number of results per status.
func (r Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// HasFailures reports whether any manifest failed.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Change is the before and after content of a patched file.
type Change struct {
	Path   string
	Before []byte
	After  []byte
}

// Changed reports whether the patch altered the file content.
func (c Change) Changed() bool {
	return string(c.Before) != string(c.After)
}
