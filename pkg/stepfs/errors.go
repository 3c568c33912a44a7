package stepfs

import "fmt"

// SandboxError wraps a failure reported by the sandbox while mounting a
// published tree. The tree stays published.
type SandboxError struct {
	Op    string
	Cause error
}

func (e *SandboxError) Error() string {
	return fmt.Sprintf("sandbox %s failed: %v", e.Op, e.Cause)
}

func (e *SandboxError) Unwrap() error {
	return e.Cause
}
