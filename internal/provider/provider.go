package provider

import "context"

// Transport hands a message to the host messaging stack. A nil error means the
// hand-off was accepted; it says nothing about delivery.
type Transport interface {
	SendText(ctx context.Context, address string, body string) error
}

// PermissionProbe reports whether the host currently allows sending SMS.
type PermissionProbe interface {
	HasSendPermission(ctx context.Context) (bool, error)
}

// StaticPermission is a PermissionProbe with a fixed answer, for hosts without a permission model.
type StaticPermission bool

func (p StaticPermission) HasSendPermission(context.Context) (bool, error) {
	return bool(p), nil
}
