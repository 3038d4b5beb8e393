package flightsql

import "fmt"

// ErrProtocol is a sentinel for use with errors.Is to check whether any error
// in a chain is a *ProtocolError.
var ErrProtocol = &ProtocolError{}

// Error kinds raised by this package. Errors from the underlying transport
// are never reclassified and pass through untouched.
const (
	// KindValidation marks errors raised client-side before any network
	// activity: empty query text, empty handles, empty parameter buffers.
	KindValidation = "ValidationError"
	// KindResult marks errors raised after a successful round trip when a
	// required response is absent or empty.
	KindResult = "ResultError"
)

// ProtocolError represents an error produced by this package, as opposed to
// one propagated from the transport.
type ProtocolError struct {
	Kind    string // KindValidation or KindResult
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is supports errors.Is by matching any *ProtocolError target.
func (e *ProtocolError) Is(target error) bool {
	_, ok := target.(*ProtocolError)
	return ok
}

func validationError(msg string) error {
	return &ProtocolError{Kind: KindValidation, Message: msg}
}

func resultError(msg string) error {
	return &ProtocolError{Kind: KindResult, Message: msg}
}
