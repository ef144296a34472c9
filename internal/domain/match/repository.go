package match

import "context"

// Repository persists the whole log. Save replaces the stored log atomically.
type Repository interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}
