package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	records []match.Record
}

func NewMatchRepository(records []match.Record) *MatchRepository {
	return &MatchRepository{records: slices.Clone(records)}
}

func (r *MatchRepository) Load(_ context.Context) ([]match.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.records), nil
}

func (r *MatchRepository) Save(_ context.Context, records []match.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = slices.Clone(records)
	return nil
}
