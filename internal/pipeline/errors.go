package pipeline

import "fmt"

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageInput       Stage = "input"
	StageExtract     Stage = "extract"
	StageGenerate    Stage = "generate"
	StageMaterialize Stage = "materialize"
	StageArchive     Stage = "archive"
)

// Code is the machine-readable error kind reported to clients.
type Code string

const (
	CodeFileRequired   Code = "file_required"
	CodeEmptyFilename  Code = "empty_filename"
	CodeInvalidType    Code = "invalid_type"
	CodeTooLarge       Code = "too_large"
	CodeInvalidName    Code = "invalid_project_name"
	CodeExtractFailed  Code = "extract_failed"
	CodeGenerateFailed Code = "generate_failed"
	CodeIOError        Code = "io_error"
	CodeArchiveFailed  Code = "archive_failed"
	CodeCanceled       Code = "canceled"
)

// Error is a failed generation.
type Error struct {
	Stage   Stage
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsInput reports whether the caller supplied bad input, as opposed to a
// processing fault.
func (e *Error) IsInput() bool { return e.Stage == StageInput }

func inputError(code Code, msg string) *Error {
	return &Error{Stage: StageInput, Code: code, Message: msg}
}

func stageError(stage Stage, code Code, msg string, err error) *Error {
	return &Error{Stage: stage, Code: code, Message: msg, Err: err}
}
