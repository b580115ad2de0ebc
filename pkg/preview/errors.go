package preview

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure kind of the adapter contract.
type ErrorCode string

const (
	// Precondition violations.
	CodeAlreadyStarted          ErrorCode = "ALREADY_STARTED"
	CodeNotRunning              ErrorCode = "NOT_RUNNING"
	CodeConflictingSizeSpec     ErrorCode = "CONFLICTING_SIZE_SPEC"
	CodeContainerNotFound       ErrorCode = "CONTAINER_NOT_FOUND"
	CodeInvalidFocusCoordinates ErrorCode = "INVALID_FOCUS_COORDINATES"
	CodeInvalidArgument         ErrorCode = "INVALID_ARGUMENT"
	CodeUnsupportedZoomLevel    ErrorCode = "UNSUPPORTED_ZOOM_LEVEL"
	CodeNoTrackFound            ErrorCode = "NO_TRACK_FOUND"

	// Environment capability gaps.
	CodeUnsupported     ErrorCode = "UNSUPPORTED"
	CodeZoomUnsupported ErrorCode = "ZOOM_UNSUPPORTED"

	// Underlying device failures.
	CodeStreamAcquisitionFailed ErrorCode = "STREAM_ACQUISITION_FAILED"
	CodeFlipFailed              ErrorCode = "FLIP_FAILED"
	CodeDeviceSwitchFailed      ErrorCode = "DEVICE_SWITCH_FAILED"
	CodeZoomApplyFailed         ErrorCode = "ZOOM_APPLY_FAILED"
	CodeEnumerationFailed       ErrorCode = "ENUMERATION_FAILED"
)

// Category groups error codes by how a caller should react.
type Category int

const (
	CategoryPrecondition Category = iota
	CategoryCapability
	CategoryDevice
)

// Category returns the group the code belongs to.
func (c ErrorCode) Category() Category {
	switch c {
	case CodeUnsupported, CodeZoomUnsupported:
		return CategoryCapability
	case CodeStreamAcquisitionFailed, CodeFlipFailed, CodeDeviceSwitchFailed, CodeZoomApplyFailed, CodeEnumerationFailed:
		return CategoryDevice
	default:
		return CategoryPrecondition
	}
}

// Error is the failure type returned by every adapter operation.
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(err error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Underlying: err}
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches any *Error carrying the same code, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrAlreadyStarted          = newError(CodeAlreadyStarted, "camera already started")
	ErrNotRunning              = newError(CodeNotRunning, "camera is not running")
	ErrConflictingSizeSpec     = newError(CodeConflictingSizeSpec, "aspectRatio cannot be combined with width or height")
	ErrContainerNotFound       = newError(CodeContainerNotFound, "parent container not found")
	ErrInvalidFocusCoordinates = newError(CodeInvalidFocusCoordinates, "focus coordinates must be between 0 and 1")
	ErrUnsupported             = newError(CodeUnsupported, "not supported in this environment")
	ErrZoomUnsupported         = newError(CodeZoomUnsupported, "zoom is not supported by the active track")
	ErrNoTrackFound            = newError(CodeNoTrackFound, "no video track found")
)

// CodeOf returns the code of an adapter error, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func unsupported(op string) *Error {
	return newError(CodeUnsupported, op+" is not supported in this environment")
}
