package submission

import (
	"errors"
	"fmt"
)

var (
	ErrSurveyNotFound        = errors.New("survey not found")
	ErrNotAcceptingResponses = errors.New("survey is not accepting responses")
	ErrUnknownQuestion       = errors.New("question is not part of the survey")
)

// WriteError reports a failed store write. Op names the step that failed.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// CompensationError reports that the answer batch failed and the delete of
// the already written response failed too, leaving the response behind.
type CompensationError struct {
	ResponseID string
	Write      *WriteError
	Err        error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%v; delete response %s: %v", e.Write, e.ResponseID, e.Err)
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Write, e.Err}
}
