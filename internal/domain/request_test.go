package domain

import (
	"errors"
	"testing"
)

func TestNewSendRequest(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		destination string
		body        string
		wantErr     bool
	}{
		{name: "valid", destination: "9876543210", body: "hello"},
		{name: "empty destination", destination: "", body: "hello", wantErr: true},
		{name: "whitespace destination", destination: " \t ", body: "hello", wantErr: true},
		{name: "empty body", destination: "9876543210", body: "", wantErr: true},
		{name: "whitespace body", destination: "9876543210", body: "\n  ", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req, err := NewSendRequest(tc.destination, tc.body)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("NewSendRequest() error = %v, want ErrInvalidArgument", err)
				}
				if KindOf(err) != KindInvalidArgument {
					t.Fatalf("KindOf() = %s, want %s", KindOf(err), KindInvalidArgument)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewSendRequest() unexpected error = %v", err)
			}
			if req.Destination() != tc.destination || req.Body() != tc.body {
				t.Fatalf("NewSendRequest() = %+v, want fields preserved", req)
			}
		})
	}
}

func TestNewSendRequestKeepsBodyUntrimmed(t *testing.T) {
	t.Parallel()

	req, err := NewSendRequest("9876543210", "  hello  ")
	if err != nil {
		t.Fatalf("NewSendRequest() unexpected error = %v", err)
	}
	if req.Body() != "  hello  " {
		t.Fatalf("Body() = %q, want untrimmed", req.Body())
	}
}
