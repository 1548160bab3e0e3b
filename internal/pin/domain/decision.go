package domain

// Skip reasons reported by Decide and the reconcile service.
const (
	ReasonFetchError  = "index fetch error"
	ReasonUpToDate    = "already up to date"
	ReasonUnsupported = "unsupported source"
)

// Action is what a reconciliation pass does with one manifest.
type Action int

const (
	ActionSkip  Action = iota // Leave the manifest alone
	ActionApply               // Rewrite targetRevision
	ActionFail                // Report an error for the manifest
)

// Decision is the outcome of comparing a pinned version to a resolved one.
type Decision struct {
	Action  Action
	Reason  string // set for ActionSkip
	Version string // set for ActionApply
	Err     error  // set for ActionFail
}

// Skip builds a skip decision.
func Skip(reason string) Decision { return Decision{Action: ActionSkip, Reason: reason} }

// Apply builds an apply decision.
func Apply(version string) Decision { return Decision{Action: ActionApply, Version: version} }

// Fail builds a failure decision.
func Fail(err error) Decision { return Decision{Action: ActionFail, Err: err} }

// Decide compares the pinned version against the resolved one. A nil
// resolved version means resolution failed. Equality is exact string
// equality; "v1.0.0" and "1.0.0" differ.
func Decide(pinned string, resolved *ResolvedVersion) Decision {
	if resolved == nil {
		return Skip(ReasonFetchError)
	}
	if pinned == resolved.Version {
		return Skip(ReasonUpToDate)
	}
	return Apply(resolved.Version)
}

// TargetRevisionPatch is the structural patch that sets spec.source.targetRevision.
func TargetRevisionPatch(version string) map[string]any {
	return map[string]any{
		"spec": map[string]any{
			"source": map[string]any{
				"targetRevision": version,
			},
		},
	}
}
