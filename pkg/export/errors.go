package export

import (
	"errors"
	"fmt"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/tabular"
)

// ErrorKind classifies a failed operation.
type ErrorKind string

// Error kinds reported in results.
const (
	KindMalformedInput   ErrorKind = "malformed_input"
	KindUnsupportedShape ErrorKind = "unsupported_shape"
	KindEmptyDataset     ErrorKind = "empty_dataset"
	KindRender           ErrorKind = "render"
	KindStore            ErrorKind = "store"
	KindTimeout          ErrorKind = "timeout"
	KindReadBack         ErrorKind = "read_back"
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindInternal         ErrorKind = "internal"
)

// InvalidRequestError is returned when a request cannot be attempted.
type InvalidRequestError struct {
	Field  string // Request field at fault ("filename", "format", ...)
	Reason string // What is wrong with it
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request [field=%s]: %s", e.Field, e.Reason)
}

// NewInvalidRequestError creates a new InvalidRequestError.
func NewInvalidRequestError(field, reason string) *InvalidRequestError {
	return &InvalidRequestError{
		Field:  field,
		Reason: reason,
	}
}

// KindOf maps an error to its kind. Unknown errors are KindInternal and nil
// maps to "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var (
		malformed   *tabular.MalformedInputError
		unsupported *tabular.UnsupportedShapeError
		empty       *tabular.EmptyDatasetError
		renderErr   *tabular.RenderError
		readBack    *tabular.ReadBackError
		timeout     *artifact.TimeoutError
		storeErr    *artifact.StoreError
		invalid     *InvalidRequestError
	)
	switch {
	case errors.As(err, &invalid):
		return KindInvalidRequest
	case errors.As(err, &malformed):
		return KindMalformedInput
	case errors.As(err, &unsupported):
		return KindUnsupportedShape
	case errors.As(err, &empty):
		return KindEmptyDataset
	case errors.As(err, &renderErr):
		return KindRender
	case errors.As(err, &readBack):
		return KindReadBack
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &storeErr), errors.Is(err, artifact.ErrNotFound):
		return KindStore
	default:
		return KindInternal
	}
}
