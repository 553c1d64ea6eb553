package imputer

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrFileNotFound   = errors.New("input file not found")
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrMalformedInput = errors.New("malformed input")
	ErrWriteOutput    = errors.New("could not write output")
)

// Error ties a failure category to the file it concerns and the underlying
// cause. errors.Is matches both the category and the cause.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// readError classifies a failure while loading path: anything the filesystem
// reports is FileNotFound, anything else is a parse failure.
func readError(path string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return &Error{Kind: ErrFileNotFound, Path: path, Err: err}
	}
	return &Error{Kind: ErrMalformedInput, Path: path, Err: err}
}

func writeError(path string, err error) error {
	return &Error{Kind: ErrWriteOutput, Path: path, Err: err}
}

// Message converts an error returned by Impute into the text shown to users.
func Message(err error, in, out string) string {
	var e *Error
	detail := err.Error()
	if errors.As(err, &e) && e.Err != nil {
		detail = e.Err.Error()
	}
	switch {
	case errors.Is(err, ErrFileNotFound):
		return fmt.Sprintf("Error: File '%s' not found.", in)
	case errors.Is(err, ErrEmptyDataset):
		return "Error: Dataset is empty!"
	case errors.Is(err, ErrMalformedInput):
		return fmt.Sprintf("Error: could not parse '%s': %s", in, detail)
	case errors.Is(err, ErrWriteOutput):
		return fmt.Sprintf("Error: could not write '%s': %s", out, detail)
	}
	return "Error: " + detail
}

// Success is the completion message for a finished run.
func Success(res *Result) string {
	return fmt.Sprintf("Imputation complete. Output written to '%s'.", res.Output)
}
