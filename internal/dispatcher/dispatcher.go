package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/sms-bridge/internal/clock"
	"github.com/kursadbilgin/sms-bridge/internal/domain"
	"github.com/kursadbilgin/sms-bridge/internal/observability"
	"github.com/kursadbilgin/sms-bridge/internal/provider"
	"go.uber.org/zap"
)

const (
	permissionDeniedMessage = "SMS permission not granted"
	resultSucceeded         = "succeeded"
	resultFailed            = "failed"
)

// Dispatcher validates a send request, checks the permission gate, normalizes the
// address and hands the message to the transport with bounded, constant-backoff retries.
//
// A Dispatcher holds no per-call state and is safe for concurrent use. It does not
// serialize calls into the transport.
type Dispatcher struct {
	transport   provider.Transport
	permission  provider.PermissionProbe
	timer       clock.Timer
	callingCode string
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
	newID       func() string
}

func New(
	transport provider.Transport,
	permission provider.PermissionProbe,
	timer clock.Timer,
	callingCode string,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if permission == nil {
		return nil, fmt.Errorf("permission probe is required")
	}
	if timer == nil {
		timer = clock.System{}
	}
	callingCode = strings.TrimPrefix(strings.TrimSpace(callingCode), "+")
	if callingCode == "" {
		callingCode = domain.DefaultCallingCode
	}
	for _, r := range callingCode {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("calling code %q must contain digits only", callingCode)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		transport:   transport,
		permission:  permission,
		timer:       timer,
		callingCode: callingCode,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

func (d *Dispatcher) CallingCode() string { return d.callingCode }

// Dispatch runs one send to completion. Validation and permission failures return
// an error and no Outcome. Once the attempt loop starts the result is always an
// Outcome; a failed Outcome is paired with a TransientSendFailure error.
//
// Cancelling ctx does not abort a started dispatch: waits run on a context that
// keeps ctx values but ignores its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, profile Profile, destination string, body string) (domain.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := profile.Validate(); err != nil {
		return domain.Outcome{}, err
	}

	logger := observability.WithContextLogger(d.logger, ctx).With(
		zap.String("dispatchId", d.newID()),
		zap.String("profile", profile.Name),
	)

	if d.metrics != nil {
		d.metrics.IncDispatchInFlight(profile.Name)
		defer d.metrics.DecDispatchInFlight(profile.Name)
	}

	req, err := domain.NewSendRequest(destination, body)
	if err != nil {
		logger.Warn("dispatch rejected", zap.Error(err))
		d.observe(profile, string(domain.KindOf(err)), 0)
		return domain.Outcome{}, err
	}

	granted, err := d.permission.HasSendPermission(ctx)
	if err != nil {
		dispatchErr := domain.NewDispatchError(domain.KindPermissionQueryFailed, "failed to check SMS permission", err)
		logger.Error("permission probe failed", zap.Error(err))
		d.observe(profile, string(dispatchErr.Kind), 0)
		return domain.Outcome{}, dispatchErr
	}
	if !granted {
		dispatchErr := domain.NewDispatchError(domain.KindPermissionDenied, permissionDeniedMessage, nil)
		logger.Warn("SMS permission not granted")
		d.observe(profile, string(dispatchErr.Kind), 0)
		return domain.Outcome{}, dispatchErr
	}

	address := domain.NormalizeAddress(req.Destination(), d.callingCode)
	logger = logger.With(zap.String("address", observability.MaskAddress(address)))

	outcome := d.attempt(context.WithoutCancel(ctx), logger, profile, address, req.Body())
	if !outcome.IsSuccess() {
		d.observe(profile, resultFailed, outcome.Attempts)
		return outcome, domain.NewDispatchError(domain.KindTransientSendFailure, outcome.Reason, nil)
	}

	d.observe(profile, resultSucceeded, outcome.Attempts)
	return outcome, nil
}

// CheckPermission reads the permission gate without side effects.
func (d *Dispatcher) CheckPermission(ctx context.Context) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	granted, err := d.permission.HasSendPermission(ctx)
	if err != nil {
		observability.WithContextLogger(d.logger, ctx).Error("permission probe failed", zap.Error(err))
		return false, domain.NewDispatchError(domain.KindPermissionQueryFailed, "failed to check SMS permission", err)
	}
	return granted, nil
}

func (d *Dispatcher) attempt(ctx context.Context, logger *zap.Logger, profile Profile, address string, body string) domain.Outcome {
	var lastErr error

	for attempt := 1; attempt <= profile.MaxAttempts; attempt++ {
		logger.Debug("sending SMS",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", profile.MaxAttempts),
			zap.Int("bodyLength", len(body)),
		)

		sendStart := d.now()
		err := d.transport.SendText(ctx, address, body)
		if d.metrics != nil {
			d.metrics.ObserveTransportSend(profile.Name, d.now().Sub(sendStart))
		}

		if err == nil {
			// Passive pause only; delivery is never confirmed.
			if err := d.timer.Sleep(ctx, profile.SettleWait); err != nil {
				logger.Warn("settle wait interrupted", zap.Error(err))
			}
			logger.Info("SMS handed off", zap.Int("attempts", attempt))
			return domain.Succeeded(address, attempt)
		}

		lastErr = err
		logger.Warn("SMS attempt failed",
			zap.Int("attempt", attempt),
			zap.Bool("transient", provider.IsTransient(err)),
			zap.Error(err),
		)

		if attempt < profile.MaxAttempts {
			if d.metrics != nil {
				d.metrics.IncRetry(profile.Name)
			}
			if err := d.timer.Sleep(ctx, profile.BackoffWait); err != nil {
				logger.Warn("backoff wait interrupted", zap.Error(err))
			}
		}
	}

	reason := fmt.Sprintf("failed to send SMS after %d attempts", profile.MaxAttempts)
	logger.Error("SMS send failed", zap.Int("attempts", profile.MaxAttempts), zap.Error(lastErr))
	return domain.Failed(address, profile.MaxAttempts, reason, lastErr)
}

func (d *Dispatcher) observe(profile Profile, result string, attempts int) {
	if d.metrics == nil {
		return
	}
	d.metrics.ObserveDispatch(profile.Name, strings.ToLower(result), attempts)
}
