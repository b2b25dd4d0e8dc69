package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomFull     = "room_full"
	ErrCodeRoomNotFound = "room_not_found"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnknownEvent = "unknown_event"
	ErrCodeRateLimited  = "rate_limited"
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrRoomNotFound = errors.New("room not found")
	ErrBadRequest   = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// NewError builds a CoreError for layers that reject input before it reaches the hub.
func NewError(code, msg string) *CoreError {
	return coreError(code, msg)
}
