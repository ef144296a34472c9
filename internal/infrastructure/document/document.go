// Package document encodes the match log as the JSON document used by the
// data file and by backups.
package document

import (
	"io"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
)

const formatVersion = 1

type matchEntry struct {
	ID        string    `json:"id"`
	MatchID   int       `json:"match_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeGoals int       `json:"home_goals"`
	AwayGoals int       `json:"away_goals"`
	Neutral   bool      `json:"neutral"`
	Timestamp time.Time `json:"timestamp"`
}

type document struct {
	Version      int          `json:"version"`
	LastUpdated  time.Time    `json:"last_updated"`
	MatchHistory []matchEntry `json:"match_history"`
}

// Encode renders the snapshot as indented JSON.
func Encode(snapshot backup.Snapshot) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := Write(buf, snapshot); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// Write streams the snapshot to w.
func Write(w io.Writer, snapshot backup.Snapshot) error {
	doc := document{
		Version:      formatVersion,
		LastUpdated:  snapshot.LastUpdated.UTC(),
		MatchHistory: make([]matchEntry, 0, len(snapshot.Records)),
	}
	for _, rec := range snapshot.Records {
		doc.MatchHistory = append(doc.MatchHistory, matchEntry{
			ID:        rec.ID,
			MatchID:   rec.Position,
			HomeTeam:  rec.HomeTeam,
			AwayTeam:  rec.AwayTeam,
			HomeGoals: rec.HomeGoals,
			AwayGoals: rec.AwayGoals,
			Neutral:   rec.Neutral,
			Timestamp: rec.RecordedAt.UTC(),
		})
	}

	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return crerr.Wrap(err, "encode match document")
	}
	return nil
}

// Decode parses a document. Records are returned in match_id order and
// every fact is validated.
func Decode(data []byte) (backup.Snapshot, error) {
	var doc document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return backup.Snapshot{}, crerr.Wrap(err, "decode match document")
	}
	if doc.Version > formatVersion {
		return backup.Snapshot{}, crerr.Newf("unsupported match document version %d", doc.Version)
	}

	records := make([]match.Record, 0, len(doc.MatchHistory))
	for i, entry := range doc.MatchHistory {
		fact := match.Fact{
			HomeTeam:  entry.HomeTeam,
			AwayTeam:  entry.AwayTeam,
			HomeGoals: entry.HomeGoals,
			AwayGoals: entry.AwayGoals,
			Neutral:   entry.Neutral,
		}
		if err := fact.Validate(); err != nil {
			return backup.Snapshot{}, crerr.Wrapf(err, "match entry %d", i+1)
		}
		records = append(records, match.Record{
			ID:         entry.ID,
			Position:   entry.MatchID,
			RecordedAt: entry.Timestamp,
			Fact:       fact.Normalize(),
		})
	}
	// Entries with equal match_id keep file order.
	slices.SortStableFunc(records, func(a, b match.Record) int { return a.Position - b.Position })

	return backup.Snapshot{
		Records:     match.NewLog(records).Records(),
		LastUpdated: doc.LastUpdated,
	}, nil
}
