package campaign

import (
	"errors"
	"fmt"
)

// ErrNoOffers is returned by a session when the page or payload for a window
// lists no offers at all.
var ErrNoOffers = errors.New("no offers listed")

type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailurePayload   FailureKind = "payload"
	FailureEmpty     FailureKind = "empty"
)

// SourceFailure is a recoverable failure to fetch one window. The window is
// skipped and the campaign continues.
type SourceFailure struct {
	Kind FailureKind
	Err  error
}

func NewSourceFailure(kind FailureKind, err error) *SourceFailure {
	return &SourceFailure{Kind: kind, Err: err}
}

func (f *SourceFailure) Error() string {
	return fmt.Sprintf("%s failure: %s", f.Kind, f.Err.Error())
}

func (f *SourceFailure) Unwrap() error {
	return f.Err
}

// Classify maps a fetch error to its failure kind. Errors that are neither a
// SourceFailure nor ErrNoOffers count as transport failures.
func Classify(err error) FailureKind {
	if errors.Is(err, ErrNoOffers) {
		return FailureEmpty
	}
	var failure *SourceFailure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return FailureTransport
}
