package scorer

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvalidScoreError reports a score outside the 1-5 scale.
type InvalidScoreError struct {
	Index int // position in the input sequence, 0-based
	Value int
}

func (e *InvalidScoreError) Error() (msg string) {
	msg = fmt.Sprintf("invalid score at index %d: %d is outside %d-%d", e.Index, e.Value, MinScore, MaxScore)
	return msg
}

// InvalidDistributionError reports a target distribution that cannot be used.
type InvalidDistributionError struct {
	Reason string
}

func (e *InvalidDistributionError) Error() (msg string) {
	msg = "invalid target distribution: " + e.Reason
	return msg
}

// InvalidInputError reports an empty or otherwise unusable score sequence.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() (msg string) {
	msg = "invalid input: " + e.Reason
	return msg
}

// IsIntegrationError reports whether err, or anything it wraps, is one of the
// scorer's configuration/integration errors. These are never retried.
func IsIntegrationError(err error) (ok bool) {
	var scoreErr *InvalidScoreError
	var distErr *InvalidDistributionError
	var inputErr *InvalidInputError

	ok = errors.As(err, &scoreErr) || errors.As(err, &distErr) || errors.As(err, &inputErr)
	return ok
}
