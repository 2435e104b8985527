package tabular

import "fmt"

// MalformedInputError is returned when a text payload cannot be parsed as JSON.
type MalformedInputError struct {
	Cause error // Underlying parse error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}

// NewMalformedInputError creates a new MalformedInputError.
func NewMalformedInputError(cause error) *MalformedInputError {
	return &MalformedInputError{
		Cause: cause,
	}
}

// UnsupportedShapeError is returned when a payload does not match any known
// shape, or when a nested value exceeds the unwrap depth limit.
type UnsupportedShapeError struct {
	Path   string // Location in the payload ("$", "$.rows[3]", ...)
	Reason string // Why the shape was rejected
}

// Error implements the error interface.
func (e *UnsupportedShapeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("unsupported shape [path=%s]: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("unsupported shape: %s", e.Reason)
}

// NewUnsupportedShapeError creates a new UnsupportedShapeError.
func NewUnsupportedShapeError(path, reason string) *UnsupportedShapeError {
	return &UnsupportedShapeError{
		Path:   path,
		Reason: reason,
	}
}

// EmptyDatasetError is returned when classification yields zero records.
type EmptyDatasetError struct {
	Shape string // Shape that was classified before the data ran out
}

// Error implements the error interface.
func (e *EmptyDatasetError) Error() string {
	if e.Shape != "" {
		return fmt.Sprintf("empty dataset [shape=%s]", e.Shape)
	}
	return "empty dataset"
}

// NewEmptyDatasetError creates a new EmptyDatasetError.
func NewEmptyDatasetError(shape string) *EmptyDatasetError {
	return &EmptyDatasetError{
		Shape: shape,
	}
}

// RenderError represents an error while rendering a dataset.
type RenderError struct {
	Format Format // Target format
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render error [format=%s]: %v", e.Format, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new RenderError.
func NewRenderError(format Format, cause error) *RenderError {
	return &RenderError{
		Format: format,
		Cause:  cause,
	}
}

// ReadBackError represents an error while reading a previously rendered
// spreadsheet.
type ReadBackError struct {
	Cause error // Underlying error
}

// Error implements the error interface.
func (e *ReadBackError) Error() string {
	return fmt.Sprintf("read-back error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ReadBackError) Unwrap() error {
	return e.Cause
}

// NewReadBackError creates a new ReadBackError.
func NewReadBackError(cause error) *ReadBackError {
	return &ReadBackError{
		Cause: cause,
	}
}
