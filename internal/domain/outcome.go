package domain

// OutcomeStatus tags a dispatch Outcome.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "SUCCEEDED"
	OutcomeFailed    OutcomeStatus = "FAILED"
)

func (s OutcomeStatus) String() string { return string(s) }

// Outcome is the result of a dispatch that passed validation and the permission gate.
//
// Succeeded outcomes carry the normalized Address; failed ones carry Reason and the
// LastError reported by the transport. Attempts is in [1, max] on success and equals
// max on failure.
type Outcome struct {
	Status    OutcomeStatus
	Address   string
	Attempts  int
	Reason    string
	LastError string
}

func Succeeded(address string, attempts int) Outcome {
	return Outcome{
		Status:   OutcomeSucceeded,
		Address:  address,
		Attempts: attempts,
	}
}

func Failed(address string, attempts int, reason string, lastErr error) Outcome {
	o := Outcome{
		Status:   OutcomeFailed,
		Address:  address,
		Attempts: attempts,
		Reason:   reason,
	}
	if lastErr != nil {
		o.LastError = lastErr.Error()
	}
	return o
}

func (o Outcome) IsSuccess() bool { return o.Status == OutcomeSucceeded }
