package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
	qb "github.com/riskibarqy/elo-championship/internal/platform/querybuilder"
)

const (
	matchesTable = "matches"
	// insertBatchSize keeps each statement under the SQLite bind limit.
	insertBatchSize = 100
)

var matchColumns = []string{
	"id", "position", "home_team", "away_team", "home_goals", "away_goals", "neutral", "recorded_at",
}

type matchTableModel struct {
	ID         string `db:"id"`
	Position   int    `db:"position"`
	HomeTeam   string `db:"home_team"`
	AwayTeam   string `db:"away_team"`
	HomeGoals  int    `db:"home_goals"`
	AwayGoals  int    `db:"away_goals"`
	Neutral    bool   `db:"neutral"`
	RecordedAt int64  `db:"recorded_at"`
}

func matchRowFromRecord(rec match.Record) matchTableModel {
	recordedAt := int64(0)
	if !rec.RecordedAt.IsZero() {
		recordedAt = rec.RecordedAt.UTC().UnixMilli()
	}
	return matchTableModel{
		ID:         rec.ID,
		Position:   rec.Position,
		HomeTeam:   rec.HomeTeam,
		AwayTeam:   rec.AwayTeam,
		HomeGoals:  rec.HomeGoals,
		AwayGoals:  rec.AwayGoals,
		Neutral:    rec.Neutral,
		RecordedAt: recordedAt,
	}
}

func (m matchTableModel) record() match.Record {
	rec := match.Record{
		ID:       m.ID,
		Position: m.Position,
		Fact: match.Fact{
			HomeTeam:  m.HomeTeam,
			AwayTeam:  m.AwayTeam,
			HomeGoals: m.HomeGoals,
			AwayGoals: m.AwayGoals,
			Neutral:   m.Neutral,
		},
	}
	if m.RecordedAt != 0 {
		rec.RecordedAt = time.UnixMilli(m.RecordedAt).UTC()
	}
	return rec
}

type MatchRepository struct {
	db      *sqlx.DB
	dialect qb.Dialect
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db, dialect: dialectFor(db.DriverName())}
}

func (r *MatchRepository) Load(ctx context.Context) ([]match.Record, error) {
	query, args, err := qb.Select(matchColumns...).
		Dialect(r.dialect).
		From(matchesTable).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

// Save replaces the stored log in one transaction.
func (r *MatchRepository) Save(ctx context.Context, records []match.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.DeleteFrom(matchesTable).Dialect(r.dialect).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete matches query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		insert := qb.InsertInto(matchesTable).Dialect(r.dialect)
		for _, rec := range records[start:end] {
			insert.Model(matchRowFromRecord(rec))
		}
		query, args, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert matches %d-%d: %w", start+1, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save matches tx: %w", err)
	}
	return nil
}
