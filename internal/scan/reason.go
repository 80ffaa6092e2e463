package scan

// Reason records why a file was selected for deletion.
type Reason string

const (
	// ReasonTargetName is a walk match on one of the target filenames
	ReasonTargetName Reason = "target_name"
	// ReasonExplicit is a file named directly in the explicit file list
	ReasonExplicit Reason = "explicit"
)

// String returns the label stored in logs and the deletion history
func (r Reason) String() string {
	if r == "" {
		return "unknown"
	}
	return string(r)
}
