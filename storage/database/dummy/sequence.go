package dummydb

import (
	"context"

	"github.com/philip-ks/eduforge/core/sequence"
)

type sequenceRepository struct {
	db *counterTable
}

var _ sequence.Repository = (*sequenceRepository)(nil) // interface compliance check

func NewSequenceRepository(db *DB) sequence.Repository {
	return &sequenceRepository{db: db.counter}
}

func (repo *sequenceRepository) IncrementCounter(ctx context.Context, key string) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.counters[key]++
	return repo.db.counters[key], nil
}
