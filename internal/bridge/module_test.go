package bridge

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kursadbilgin/sms-bridge/internal/clock"
	"github.com/kursadbilgin/sms-bridge/internal/dispatcher"
	"github.com/kursadbilgin/sms-bridge/internal/domain"
	"go.uber.org/zap"
)

func TestModuleSendOperations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		call        func(m *Module) *Promise[SendResult]
		wantMessage string
		wantCalls   int32
	}{
		{
			name:        "sendSMS",
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMS(context.Background(), "98765 43210", "hello") },
			wantMessage: "SMS sent successfully",
			wantCalls:   1,
		},
		{
			name:        "sendSMSDirect",
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMSDirect(context.Background(), "98765 43210", "hello") },
			wantMessage: "SMS sent successfully",
			wantCalls:   1,
		},
		{
			name:        "testSMS",
			call:        func(m *Module) *Promise[SendResult] { return m.TestSMS(context.Background(), "98765 43210", "hello") },
			wantMessage: "Test SMS sent successfully",
			wantCalls:   1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			transport := &fakeTransport{}
			m := newTestModule(t, transport, fakePermission{granted: true})

			result, err := tc.call(m).Await(context.Background())
			if err != nil {
				t.Fatalf("Await() error = %v", err)
			}
			if !result.Success {
				t.Fatal("success = false, want true")
			}
			if result.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", result.Message, tc.wantMessage)
			}
			if result.Phone != "+919876543210" {
				t.Fatalf("phone = %q, want +919876543210", result.Phone)
			}
			if got := transport.calls.Load(); got != tc.wantCalls {
				t.Fatalf("transport calls = %d, want %d", got, tc.wantCalls)
			}
		})
	}
}

func TestModuleSendRejections(t *testing.T) {
	t.Parallel()

	sendFailure := errors.New("generic failure")

	testCases := []struct {
		name        string
		granted     bool
		probeErr    error
		sendErr     error
		call        func(m *Module) *Promise[SendResult]
		wantKind    domain.ErrorKind
		wantMessage string
		wantCalls   int32
	}{
		{
			name:        "missing phone",
			granted:     true,
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMS(context.Background(), " ", "hello") },
			wantKind:    domain.KindInvalidArgument,
			wantMessage: "Phone number is required",
		},
		{
			name:        "missing message",
			granted:     true,
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMSDirect(context.Background(), "9876543210", "") },
			wantKind:    domain.KindInvalidArgument,
			wantMessage: "Message is required",
		},
		{
			name:        "permission denied",
			granted:     false,
			call:        func(m *Module) *Promise[SendResult] { return m.TestSMS(context.Background(), "9876543210", "hello") },
			wantKind:    domain.KindPermissionDenied,
			wantMessage: "SMS permission not granted. Please grant SMS permission in app settings.",
		},
		{
			name:        "permission probe error",
			probeErr:    errors.New("probe down"),
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMS(context.Background(), "9876543210", "hello") },
			wantKind:    domain.KindPermissionQueryFailed,
			wantMessage: "Failed to send SMS: probe down",
		},
		{
			name:        "retries exhausted",
			granted:     true,
			sendErr:     sendFailure,
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMS(context.Background(), "9876543210", "hello") },
			wantKind:    domain.KindTransientSendFailure,
			wantMessage: "Failed to send SMS after 3 attempts",
			wantCalls:   3,
		},
		{
			name:        "direct failure",
			granted:     true,
			sendErr:     sendFailure,
			call:        func(m *Module) *Promise[SendResult] { return m.SendSMSDirect(context.Background(), "9876543210", "hello") },
			wantKind:    domain.KindTransientSendFailure,
			wantMessage: "Direct SMS failed: generic failure",
			wantCalls:   1,
		},
		{
			name:        "test failure",
			granted:     true,
			sendErr:     sendFailure,
			call:        func(m *Module) *Promise[SendResult] { return m.TestSMS(context.Background(), "9876543210", "hello") },
			wantKind:    domain.KindTransientSendFailure,
			wantMessage: "Test SMS failed: generic failure",
			wantCalls:   1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			transport := &fakeTransport{err: tc.sendErr}
			m := newTestModule(t, transport, fakePermission{granted: tc.granted, err: tc.probeErr})

			_, err := tc.call(m).Await(context.Background())
			rejection, ok := AsError(err)
			if !ok {
				t.Fatalf("Await() error = %v, want *Error", err)
			}
			if rejection.Code != CodeSMSError {
				t.Fatalf("code = %q, want %q", rejection.Code, CodeSMSError)
			}
			if rejection.Kind != tc.wantKind {
				t.Fatalf("kind = %q, want %q", rejection.Kind, tc.wantKind)
			}
			if rejection.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", rejection.Message, tc.wantMessage)
			}
			if got := transport.calls.Load(); got != tc.wantCalls {
				t.Fatalf("transport calls = %d, want %d", got, tc.wantCalls)
			}
		})
	}
}

func TestModuleCheckSMSPermission(t *testing.T) {
	t.Parallel()

	for _, granted := range []bool{true, false} {
		m := newTestModule(t, &fakeTransport{}, fakePermission{granted: granted})

		result, err := m.CheckSMSPermission(context.Background()).Await(context.Background())
		if err != nil {
			t.Fatalf("CheckSMSPermission() error = %v", err)
		}
		if result.HasPermission != granted {
			t.Fatalf("hasPermission = %v, want %v", result.HasPermission, granted)
		}
	}
}

func TestModuleCheckSMSPermissionError(t *testing.T) {
	t.Parallel()

	m := newTestModule(t, &fakeTransport{}, fakePermission{err: errors.New("binder died")})

	_, err := m.CheckSMSPermission(context.Background()).Await(context.Background())
	rejection, ok := AsError(err)
	if !ok {
		t.Fatalf("error = %v, want *Error", err)
	}
	if rejection.Code != CodePermissionCheckError {
		t.Fatalf("code = %q, want %q", rejection.Code, CodePermissionCheckError)
	}
	if rejection.Message != "Failed to check SMS permission: binder died" {
		t.Fatalf("message = %q", rejection.Message)
	}
}

func TestModuleSendDoesNotBlockCaller(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	transport := &fakeTransport{}
	d, err := dispatcher.New(transport, fakePermission{granted: true}, clock.TimerFunc(func(ctx context.Context, d time.Duration) error {
		<-release
		return nil
	}), "91", zap.NewNop())
	if err != nil {
		t.Fatalf("dispatcher.New() error = %v", err)
	}
	m, err := NewModule(d)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	promise := m.SendSMS(context.Background(), "9876543210", "hello")

	select {
	case <-promise.Done():
		t.Fatal("promise settled before the settle wait elapsed")
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := promise.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await() error = %v, want deadline exceeded", err)
	}

	close(release)
	result, err := promise.Await(context.Background())
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if !result.Success {
		t.Fatal("success = false, want true")
	}
}

func TestPromiseRecoversPanic(t *testing.T) {
	t.Parallel()

	p := newPromise(func() (int, error) {
		panic("boom")
	})

	_, err := p.Await(context.Background())
	rejection, ok := AsError(err)
	if !ok {
		t.Fatalf("error = %v, want *Error", err)
	}
	if rejection.Code != CodeSMSError {
		t.Fatalf("code = %q, want %q", rejection.Code, CodeSMSError)
	}
}

func TestNewModuleValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewModule(nil); err == nil {
		t.Fatal("expected error for nil dispatcher")
	}

	d := &stubDispatcher{}
	bad := dispatcher.Profile{Name: "bad"}
	if _, err := NewModuleWithProfiles(d, dispatcher.Standard(), bad, dispatcher.Test()); err == nil {
		t.Fatal("expected error for invalid profile")
	}
}

func TestModuleUsesConfiguredProfiles(t *testing.T) {
	t.Parallel()

	var gotProfiles []string
	d := &stubDispatcher{
		dispatchFn: func(ctx context.Context, profile dispatcher.Profile, destination, body string) (domain.Outcome, error) {
			gotProfiles = append(gotProfiles, profile.Name)
			return domain.Succeeded("+919876543210", 1), nil
		},
	}

	m, err := NewModule(d)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	ctx := context.Background()
	if _, err := m.SendSMS(ctx, "9876543210", "a").Await(ctx); err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if _, err := m.SendSMSDirect(ctx, "9876543210", "b").Await(ctx); err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if _, err := m.TestSMS(ctx, "9876543210", "c").Await(ctx); err != nil {
		t.Fatalf("Await() error = %v", err)
	}

	want := []string{dispatcher.ProfileStandard, dispatcher.ProfileDirect, dispatcher.ProfileTest}
	if len(gotProfiles) != len(want) {
		t.Fatalf("profiles = %v, want %v", gotProfiles, want)
	}
	for i := range want {
		if gotProfiles[i] != want[i] {
			t.Fatalf("profiles = %v, want %v", gotProfiles, want)
		}
	}
}

func newTestModule(t *testing.T, transport *fakeTransport, probe fakePermission) *Module {
	t.Helper()

	d, err := dispatcher.New(transport, probe, clock.TimerFunc(func(ctx context.Context, d time.Duration) error {
		return nil
	}), domain.DefaultCallingCode, zap.NewNop())
	if err != nil {
		t.Fatalf("dispatcher.New() error = %v", err)
	}

	m, err := NewModule(d)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m
}

type fakeTransport struct {
	calls atomic.Int32
	err   error
}

func (f *fakeTransport) SendText(ctx context.Context, address string, body string) error {
	f.calls.Add(1)
	return f.err
}

type fakePermission struct {
	granted bool
	err     error
}

func (f fakePermission) HasSendPermission(context.Context) (bool, error) {
	return f.granted, f.err
}

type stubDispatcher struct {
	dispatchFn func(ctx context.Context, profile dispatcher.Profile, destination, body string) (domain.Outcome, error)
	checkFn    func(ctx context.Context) (bool, error)
}

func (s *stubDispatcher) Dispatch(ctx context.Context, profile dispatcher.Profile, destination, body string) (domain.Outcome, error) {
	if s.dispatchFn != nil {
		return s.dispatchFn(ctx, profile, destination, body)
	}
	return domain.Outcome{}, nil
}

func (s *stubDispatcher) CheckPermission(ctx context.Context) (bool, error) {
	if s.checkFn != nil {
		return s.checkFn(ctx)
	}
	return false, nil
}

func TestSettledPromises(t *testing.T) {
	t.Parallel()

	got, err := Resolved(PermissionResult{HasPermission: true}).Await(context.Background())
	if err != nil || !got.HasPermission {
		t.Fatalf("Resolved().Await() = %+v, %v", got, err)
	}

	rejection := &Error{Code: CodeSMSError, Message: "nope"}
	_, err = Rejected[SendResult](rejection).Await(context.Background())
	if !errors.Is(err, rejection) {
		t.Fatalf("Rejected().Await() error = %v, want %v", err, rejection)
	}
	if err.Error() != "SMS_ERROR: nope" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
