package core

import (
	"errors"
	"fmt"
)

// ErrContractViolation is the sentinel wrapped by every ContractViolationError.
// A contract violation indicates a core-invariant breach (malformed history
// that survived repair, shrinking history, mutated origin) and is fatal to
// the current request.
var ErrContractViolation = errors.New("contract violation")

// ContractViolationError reports a boundary-contract breach with the location
// (boundary context and history index) where it was detected.
type ContractViolationError struct {
	Context string // boundary description, e.g. `after handler "classification"`
	Index   int    // offending history index, -1 when not entry-specific
	Detail  string
}

// Error implements the error interface.
func (e *ContractViolationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s: history[%d]: %s", ErrContractViolation, e.Context, e.Index, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Context, e.Detail)
}

// Unwrap makes the error match errors.Is(err, ErrContractViolation).
func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }
