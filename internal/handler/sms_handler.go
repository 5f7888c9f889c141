package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/sms-bridge/internal/bridge"
	"github.com/kursadbilgin/sms-bridge/internal/observability"
	"github.com/kursadbilgin/sms-bridge/internal/transport"
)

// SMSModule is the bridge surface served over HTTP.
type SMSModule interface {
	SendSMS(ctx context.Context, phoneNumber string, message string) *bridge.Promise[bridge.SendResult]
	SendSMSDirect(ctx context.Context, phoneNumber string, message string) *bridge.Promise[bridge.SendResult]
	TestSMS(ctx context.Context, phoneNumber string, message string) *bridge.Promise[bridge.SendResult]
	CheckSMSPermission(ctx context.Context) *bridge.Promise[bridge.PermissionResult]
}

type SMSHandler struct {
	module SMSModule
}

func NewSMSHandler(module SMSModule) (*SMSHandler, error) {
	if module == nil {
		return nil, fmt.Errorf("sms module is required")
	}
	return &SMSHandler{module: module}, nil
}

func RegisterSMSRoutes(router fiber.Router, module SMSModule) error {
	h, err := NewSMSHandler(module)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1/sms")
	v1.Post("/send", h.SendSMS)
	v1.Post("/send-direct", h.SendSMSDirect)
	v1.Post("/test", h.TestSMS)
	v1.Get("/permission", h.CheckSMSPermission)

	return nil
}

type sendSMSRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

type sendOperation func(ctx context.Context, phoneNumber string, message string) *bridge.Promise[bridge.SendResult]

func (h *SMSHandler) SendSMS(c *fiber.Ctx) error {
	return h.send(c, h.module.SendSMS)
}

func (h *SMSHandler) SendSMSDirect(c *fiber.Ctx) error {
	return h.send(c, h.module.SendSMSDirect)
}

func (h *SMSHandler) TestSMS(c *fiber.Ctx) error {
	return h.send(c, h.module.TestSMS)
}

func (h *SMSHandler) CheckSMSPermission(c *fiber.Ctx) error {
	ctx := requestContext(c)

	result, err := h.module.CheckSMSPermission(ctx).Await(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *SMSHandler) send(c *fiber.Ctx, op sendOperation) error {
	var req sendSMSRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := requestContext(c)
	result, err := op(ctx, req.PhoneNumber, req.Message).Await(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// respondError writes rejections in place so the response status is visible to
// middleware; anything else goes to the app error handler.
func respondError(c *fiber.Ctx, err error) error {
	if rejection, ok := bridge.AsError(err); ok {
		return transport.WriteRejection(c, rejection)
	}
	return err
}

// requestContext detaches from the fasthttp request context, which is recycled
// after the handler returns, and carries the request id as correlation id.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := context.Background()
	if correlationID := requestCorrelationID(c); correlationID != "" {
		ctx = observability.WithCorrelationID(ctx, correlationID)
	}
	return ctx
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
