package hashcash

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrDifficultyRange = errors.New("difficulty out of acceptable range")
	ErrUnknownPolicy   = errors.New("unknown difficulty policy")

	// Search errors
	ErrTargetUnreachable = errors.New("target unreachable within iteration budget")
)

// SearchError carries enough context for a caller to decide whether to retry
// with a lower difficulty or a larger budget.
type SearchError struct {
	Op       string // Operation that failed
	Err      error  // Original error
	Target   Target // Configured difficulty
	Attempts uint64 // Nonces covered before giving up
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %v (target %s, %d nonces tried)", e.Op, e.Err, e.Target, e.Attempts)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func NewSearchError(op string, err error, target Target, attempts uint64) error {
	return &SearchError{
		Op:       op,
		Err:      err,
		Target:   target,
		Attempts: attempts,
	}
}

// IsUnreachable reports whether err means the iteration budget ran out.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrTargetUnreachable)
}
