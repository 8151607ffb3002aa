package api

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNetwork covers transport failures and unexpected HTTP statuses.
	ErrNetwork = errors.New("network failure")
	// ErrDataAbsent is returned when the backend answers 200 with no records.
	ErrDataAbsent = errors.New("no data")
)

// StatusError reports a response whose status was not the one expected.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

// Unwrap makes every StatusError match ErrNetwork.
func (e *StatusError) Unwrap() error {
	return ErrNetwork
}

// TransportError reports a request that got no usable response. It
// matches ErrNetwork and keeps the underlying cause reachable, so
// errors.Is(err, context.DeadlineExceeded) holds for timeouts.
type TransportError struct {
	Method string
	URL    string
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// IsNetwork reports whether err is a transport or status failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsDataAbsent reports whether err means an empty result set.
func IsDataAbsent(err error) bool {
	return errors.Is(err, ErrDataAbsent)
}
