package usecases

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"powattest/internal/domain"
)

var ErrIllegalTransition = errors.New("illegal state transition")

type Logger interface {
	Error(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Run tracks one attestation or verification through its states.
type Run struct {
	ID     string
	state  domain.State
	logger Logger
}

func NewRun(logger Logger) *Run {
	return &Run{
		ID:     uuid.NewString(),
		state:  domain.StateIdle,
		logger: logger,
	}
}

func (r *Run) State() domain.State {
	return r.state
}

// Transition moves the run to next, refusing edges the state machine does not have.
func (r *Run) Transition(next domain.State) error {
	if !r.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.state, next)
	}
	r.logger.Debug("state transition", "run_id", r.ID, "from", r.state, "to", next)
	r.state = next
	return nil
}

// Advance is Transition that fails the run when the edge is refused.
func (r *Run) Advance(next domain.State) error {
	if err := r.Transition(next); err != nil {
		r.Fail(err)
		return err
	}
	return nil
}

// Fail moves the run to failed unless it already reached a terminal state.
func (r *Run) Fail(err error) {
	if r.state.Terminal() {
		return
	}
	r.logger.Error("run failed", "run_id", r.ID, "state", r.state, "error", err)
	r.state = domain.StateFailed
}
