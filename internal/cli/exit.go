package cli

import (
	"errors"

	"github.com/yungbote/coursetree/internal/modules/ingestion/persist"
	"github.com/yungbote/coursetree/internal/modules/ingestion/pipeline"
)

const (
	exitOK         = 0
	exitError      = 1
	exitViolations = 2
	exitStorage    = 3
)

type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *codedError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitError
}

// runExitCode classifies a finished run: 3 for storage failures, 2 for
// blocking violations or blocked chapters, 1 for anything else that failed.
func runExitCode(rep *pipeline.Report, err error) int {
	switch {
	case err != nil && persist.IsStorageError(err):
		return exitStorage
	case err != nil:
		return exitError
	case rep == nil:
		return exitError
	case rep.Failed():
		return exitStorage
	case !rep.OK:
		return exitViolations
	}
	return exitOK
}
