package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/sms-bridge/internal/dispatcher"
	"github.com/kursadbilgin/sms-bridge/internal/domain"
)

const (
	msgPhoneRequired    = "Phone number is required"
	msgMessageRequired  = "Message is required"
	msgPermissionDenied = "SMS permission not granted. Please grant SMS permission in app settings."
	msgSent             = "SMS sent successfully"
	msgTestSent         = "Test SMS sent successfully"
)

// SendResult resolves a successful send operation.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Phone   string `json:"phone"`
}

type PermissionResult struct {
	HasPermission bool `json:"hasPermission"`
}

// Dispatcher is the dispatch capability the Module exposes.
type Dispatcher interface {
	Dispatch(ctx context.Context, profile dispatcher.Profile, destination string, body string) (domain.Outcome, error)
	CheckPermission(ctx context.Context) (bool, error)
}

// Module is the operation surface offered to the calling application: three send
// variants and a permission check, each returning a Promise.
type Module struct {
	dispatcher Dispatcher
	standard   dispatcher.Profile
	direct     dispatcher.Profile
	test       dispatcher.Profile
}

func NewModule(d Dispatcher) (*Module, error) {
	return NewModuleWithProfiles(d, dispatcher.Standard(), dispatcher.Direct(), dispatcher.Test())
}

func NewModuleWithProfiles(d Dispatcher, standard, direct, test dispatcher.Profile) (*Module, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	for _, p := range []dispatcher.Profile{standard, direct, test} {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	return &Module{
		dispatcher: d,
		standard:   standard,
		direct:     direct,
		test:       test,
	}, nil
}

// SendSMS sends with retries.
func (m *Module) SendSMS(ctx context.Context, phoneNumber string, message string) *Promise[SendResult] {
	return newPromise(func() (SendResult, error) {
		outcome, err := m.dispatcher.Dispatch(ctx, m.standard, phoneNumber, message)
		if err != nil {
			return SendResult{}, rejectSend(err, outcome, func(o domain.Outcome) string {
				return fmt.Sprintf("Failed to send SMS after %d attempts", o.Attempts)
			})
		}
		return SendResult{Success: true, Message: msgSent, Phone: outcome.Address}, nil
	})
}

// SendSMSDirect sends once with a short settle wait.
func (m *Module) SendSMSDirect(ctx context.Context, phoneNumber string, message string) *Promise[SendResult] {
	return newPromise(func() (SendResult, error) {
		outcome, err := m.dispatcher.Dispatch(ctx, m.direct, phoneNumber, message)
		if err != nil {
			return SendResult{}, rejectSend(err, outcome, func(o domain.Outcome) string {
				return "Direct SMS failed: " + o.LastError
			})
		}
		return SendResult{Success: true, Message: msgSent, Phone: outcome.Address}, nil
	})
}

func (m *Module) TestSMS(ctx context.Context, phoneNumber string, message string) *Promise[SendResult] {
	return newPromise(func() (SendResult, error) {
		outcome, err := m.dispatcher.Dispatch(ctx, m.test, phoneNumber, message)
		if err != nil {
			return SendResult{}, rejectSend(err, outcome, func(o domain.Outcome) string {
				return "Test SMS failed: " + o.LastError
			})
		}
		return SendResult{Success: true, Message: msgTestSent, Phone: outcome.Address}, nil
	})
}

func (m *Module) CheckSMSPermission(ctx context.Context) *Promise[PermissionResult] {
	return newPromise(func() (PermissionResult, error) {
		granted, err := m.dispatcher.CheckPermission(ctx)
		if err != nil {
			return PermissionResult{}, &Error{
				Code:    CodePermissionCheckError,
				Message: "Failed to check SMS permission: " + causeMessage(err),
				Kind:    domain.KindPermissionQueryFailed,
				Cause:   err,
			}
		}
		return PermissionResult{HasPermission: granted}, nil
	})
}

func rejectSend(err error, outcome domain.Outcome, failedMessage func(domain.Outcome) string) *Error {
	kind := domain.KindOf(err)
	rejection := &Error{Code: CodeSMSError, Kind: kind, Cause: err}

	switch kind {
	case domain.KindInvalidArgument:
		rejection.Message = msgPhoneRequired
		var dispatchErr *domain.DispatchError
		if errors.As(err, &dispatchErr) && dispatchErr.Message == domain.MsgBodyRequired {
			rejection.Message = msgMessageRequired
		}
	case domain.KindPermissionDenied:
		rejection.Message = msgPermissionDenied
	case domain.KindPermissionQueryFailed:
		rejection.Message = "Failed to send SMS: " + causeMessage(err)
	case domain.KindTransientSendFailure:
		rejection.Message = failedMessage(outcome)
	default:
		rejection.Message = "Failed to send SMS: " + err.Error()
	}

	return rejection
}

func causeMessage(err error) string {
	var dispatchErr *domain.DispatchError
	if errors.As(err, &dispatchErr) && dispatchErr.Cause != nil {
		return dispatchErr.Cause.Error()
	}
	return err.Error()
}
