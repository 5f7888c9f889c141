package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultGatewayTimeout = 10 * time.Second

	messagesPath   = "/messages"
	permissionPath = "/permissions/send-sms"
)

type sendTextRequest struct {
	Address string `json:"address"`
	Body    string `json:"body"`
}

type permissionResponse struct {
	Granted bool `json:"granted"`
}

var (
	_ Transport       = (*GatewayClient)(nil)
	_ PermissionProbe = (*GatewayClient)(nil)
)

// GatewayClient talks to the host SMS gateway over HTTP. It is both the send
// Transport and the PermissionProbe.
type GatewayClient struct {
	client  *resty.Client
	baseURL string
}

func NewGatewayClient(baseURL string, timeout time.Duration) (*GatewayClient, error) {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)

	return NewGatewayClientWithClient(baseURL, client)
}

func NewGatewayClientWithClient(baseURL string, client *resty.Client) (*GatewayClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("gateway url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultGatewayTimeout)
	}
	// Retries belong to the dispatcher.
	client.SetRetryCount(0)

	return &GatewayClient{
		client:  client,
		baseURL: trimmed,
	}, nil
}

func (g *GatewayClient) SendText(ctx context.Context, address string, body string) error {
	if g == nil || g.client == nil {
		return fmt.Errorf("gateway client is not initialized")
	}

	response, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendTextRequest{Address: address, Body: body}).
		Post(g.baseURL + messagesPath)
	if err != nil {
		return &ProviderError{
			Op:        "send",
			Message:   "request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	return checkResponse("send", response)
}

func (g *GatewayClient) HasSendPermission(ctx context.Context) (bool, error) {
	if g == nil || g.client == nil {
		return false, fmt.Errorf("gateway client is not initialized")
	}

	var result permissionResponse
	response, err := g.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(g.baseURL + permissionPath)
	if err != nil {
		return false, &ProviderError{
			Op:        "permission",
			Message:   "request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if err := checkResponse("permission", response); err != nil {
		return false, err
	}

	return result.Granted, nil
}

func checkResponse(op string, response *resty.Response) error {
	if response == nil {
		return &ProviderError{
			Op:        op,
			Message:   "empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	message := fmt.Sprintf("gateway returned status %d", statusCode)
	if body := strings.TrimSpace(response.String()); body != "" {
		message = fmt.Sprintf("%s: %s", message, body)
	}

	return &ProviderError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Transient:  isTransientHTTPStatus(statusCode),
	}
}
