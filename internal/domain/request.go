package domain

import "strings"

const (
	MsgDestinationRequired = "phone number is required"
	MsgBodyRequired        = "message is required"
)

// SendRequest is a single validated SMS hand-off request.
type SendRequest struct {
	destination string
	body        string
}

// NewSendRequest validates destination and body. Both must be non-empty after trimming.
func NewSendRequest(destination, body string) (SendRequest, error) {
	if strings.TrimSpace(destination) == "" {
		return SendRequest{}, NewDispatchError(KindInvalidArgument, MsgDestinationRequired, nil)
	}
	if strings.TrimSpace(body) == "" {
		return SendRequest{}, NewDispatchError(KindInvalidArgument, MsgBodyRequired, nil)
	}

	return SendRequest{destination: destination, body: body}, nil
}

func (r SendRequest) Destination() string { return r.destination }

// Body is returned as supplied; only emptiness is judged on the trimmed value.
func (r SendRequest) Body() string { return r.body }
