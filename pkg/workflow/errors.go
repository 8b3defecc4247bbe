package workflow

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a pipeline failure for recovery logic.
type ErrorClass string

const (
	// ErrorClassFatal indicates no structure could be obtained; the
	// pipeline halts with the stage frozen.
	ErrorClassFatal ErrorClass = "fatal"

	// ErrorClassDegraded indicates the pipeline continues with reduced
	// output. Examples: failed relaxation, missing reference data.
	ErrorClassDegraded ErrorClass = "degraded"

	// ErrorClassContract indicates a collaborator violated its call
	// contract. These propagate out of the orchestrator since they signal
	// a programming error, not a domain condition.
	ErrorClassContract ErrorClass = "contract"
)

// PipelineError is a classified pipeline failure with context.
type PipelineError struct {
	// Class is the failure classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Stage is the stage during which the failure occurred.
	Stage Stage `json:"stage"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s (stage=%s): %s", e.Class, e.Message, e.Stage, e.Err)
	}
	return fmt.Sprintf("[%s] %s (stage=%s)", e.Class, e.Message, e.Stage)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// NewFatalError creates a fatal pipeline error.
func NewFatalError(message string, stage Stage, err error) *PipelineError {
	return &PipelineError{Class: ErrorClassFatal, Message: message, Stage: stage, Err: err}
}

// NewDegradedError creates a degraded pipeline error.
func NewDegradedError(message string, stage Stage, err error) *PipelineError {
	return &PipelineError{Class: ErrorClassDegraded, Message: message, Stage: stage, Err: err}
}

// NewContractError creates a contract violation error.
func NewContractError(message string, stage Stage, err error) *PipelineError {
	return &PipelineError{Class: ErrorClassContract, Message: message, Stage: stage, Err: err}
}

// IsContractViolation reports whether err is a contract violation.
func IsContractViolation(err error) bool {
	var e *PipelineError
	if errors.As(err, &e) {
		return e.Class == ErrorClassContract
	}
	return false
}

// IsFatal reports whether err is a fatal pipeline error.
func IsFatal(err error) bool {
	var e *PipelineError
	if errors.As(err, &e) {
		return e.Class == ErrorClassFatal
	}
	return false
}
