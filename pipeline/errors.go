package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidInput reports a buffer the pipeline cannot process.
var ErrInvalidInput = errors.New("pipeline: invalid input")

// StageError wraps a failure with the stage it originated from. The run
// transitions to StateFailed and no output buffer is produced.
type StageError struct {
	Stage State
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage State, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
