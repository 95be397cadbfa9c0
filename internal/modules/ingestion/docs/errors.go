package docs

import (
	"fmt"
	"regexp"
	"strconv"
)

type MissingDocumentError struct {
	Name string
}

func (e *MissingDocumentError) Error() string {
	return fmt.Sprintf("missing document: %s", e.Name)
}

// MalformedDocumentError locates a parse failure. Line and Column are 1-based;
// 0 means unknown.
type MalformedDocumentError struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("malformed document %s:%d:%d: %v", e.File, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("malformed document %s:%d: %v", e.File, e.Line, e.Err)
	default:
		return fmt.Sprintf("malformed document %s: %v", e.File, e.Err)
	}
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

var positionRe = regexp.MustCompile(`line (\d+)(?:, column (\d+))?`)

func malformed(file string, err error) *MalformedDocumentError {
	out := &MalformedDocumentError{File: file, Err: err}
	if m := positionRe.FindStringSubmatch(err.Error()); m != nil {
		out.Line, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			out.Column, _ = strconv.Atoi(m[2])
		}
	}
	return out
}
