package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/sequence"
)

type sequenceRepository struct {
	db core.DB
}

var _ sequence.Repository = (*sequenceRepository)(nil) // interface compliance check

func NewSequenceRepository(db core.DB) sequence.Repository {
	return &sequenceRepository{db: db}
}

// IncrementCounter bumps the named counter in a single statement so that
// concurrent callers on separate connections serialize on the row lock and
// can never observe the same value.
func (repo *sequenceRepository) IncrementCounter(ctx context.Context, key string) (int64, error) {
	const query = `
INSERT INTO counters ("key", value) VALUES ($1, 1)
ON CONFLICT ("key") DO UPDATE SET value = counters.value + 1
RETURNING value`

	var value int64
	if err := repo.db.GetContext(ctx, &value, query, key); err != nil {
		return 0, errors.Wrap(err, "incrementing counter")
	}
	return value, nil
}
