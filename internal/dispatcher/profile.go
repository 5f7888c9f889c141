package dispatcher

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProfileStandard = "standard"
	ProfileDirect   = "direct"
	ProfileTest     = "test"
)

// Profile configures one flavour of the dispatch operation.
type Profile struct {
	Name        string
	MaxAttempts int
	// BackoffWait is the constant pause between a failed attempt and the next one.
	BackoffWait time.Duration
	// SettleWait is the passive pause after an accepted hand-off before success is declared.
	SettleWait time.Duration
}

// Standard retries up to three times.
func Standard() Profile {
	return Profile{
		Name:        ProfileStandard,
		MaxAttempts: 3,
		BackoffWait: 2 * time.Second,
		SettleWait:  3 * time.Second,
	}
}

// Direct is a single attempt with a short settle wait.
func Direct() Profile {
	return Profile{
		Name:        ProfileDirect,
		MaxAttempts: 1,
		SettleWait:  1500 * time.Millisecond,
	}
}

func Test() Profile {
	return Profile{
		Name:        ProfileTest,
		MaxAttempts: 1,
		SettleWait:  2 * time.Second,
	}
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.MaxAttempts < 1 {
		return fmt.Errorf("profile %q: max attempts must be at least 1, got %d", p.Name, p.MaxAttempts)
	}
	if p.BackoffWait < 0 || p.SettleWait < 0 {
		return fmt.Errorf("profile %q: waits must not be negative", p.Name)
	}
	return nil
}
