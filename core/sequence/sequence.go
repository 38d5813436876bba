// Package sequence produces the human-facing sequential display identifiers
// assigned to request records.
package sequence

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// RequestKey names the counter backing request display ids.
const RequestKey = "REQUEST_SEQ"

const (
	displayIDPrefix = "REQ-"
	maxAttempts     = 3
)

// ErrUnavailable is returned when the counter could not be incremented
// atomically after the bounded number of attempts.
var ErrUnavailable = errors.New("sequence unavailable")

// Repository increments the named counter and returns the new value.
// The row is created at 0 on first use, so the first returned value is 1.
//
// The increment MUST be a single atomic operation on the shared counter row
// (an increment-and-return statement, or a serializable transaction on that
// row); multiple service instances run concurrently, so in-process locking
// alone is not enough.
type Repository interface {
	IncrementCounter(ctx context.Context, key string) (int64, error)
}

type Generator struct {
	repo Repository
}

func NewGenerator(repo Repository) *Generator {
	return &Generator{repo: repo}
}

// NextDisplayID allocates the next display id for key. Each successful call
// returns a strictly greater value than every prior one; values skipped by
// failed callers leave gaps, never duplicates. Storage faults are retried up
// to maxAttempts before the allocation fails with ErrUnavailable.
func (g *Generator) NextDisplayID(ctx context.Context, key string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(err, "allocating display id")
		}
		value, err := g.repo.IncrementCounter(ctx, key)
		if err == nil {
			return FormatDisplayID(value), nil
		}
		lastErr = err
	}
	return "", errors.Wrapf(ErrUnavailable, "%d attempts, last: %v", maxAttempts, lastErr)
}

// FormatDisplayID formats a counter value as a display id, eg. 7 -> "REQ-0007".
func FormatDisplayID(value int64) string {
	return fmt.Sprintf("%s%04d", displayIDPrefix, value)
}
