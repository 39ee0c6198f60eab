package operations

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is matched by every ArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidOutcome occurs when a connection hands back a zero BulkWriteOutcome.
	ErrInvalidOutcome = errors.New("bulk write outcome is neither a success nor a partial failure")
)

// ArgumentError reports a missing or malformed argument. It is always raised
// before any network call is attempted.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func newArgumentError(param, reason string) error {
	return &ArgumentError{Param: param, Reason: reason}
}

func notNil(param string) error {
	return newArgumentError(param, "must not be nil")
}
