package bridge

import (
	"errors"
	"fmt"

	"github.com/kursadbilgin/sms-bridge/internal/domain"
)

// Rejection codes seen by the calling application.
const (
	CodeSMSError             = "SMS_ERROR"
	CodePermissionCheckError = "PERMISSION_CHECK_ERROR"
)

// Error is a promise rejection: a code/message pair plus the dispatcher kind it came from.
type Error struct {
	Code    string
	Message string
	Kind    domain.ErrorKind
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// AsError extracts a bridge rejection from err.
func AsError(err error) (*Error, bool) {
	var bridgeErr *Error
	if errors.As(err, &bridgeErr) {
		return bridgeErr, true
	}
	return nil, false
}
