package match

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/elo-championship/internal/domain/team"
)

// Log is the ordered, append-mostly match history. Every mutating method
// returns a new Log and leaves the receiver untouched, so a failed
// recompute can keep serving the previous one.
type Log struct {
	records []Record
}

// NewLog builds a log from stored records, keeping their order,
// normalizing team names and renumbering positions.
func NewLog(records []Record) Log {
	out := slices.Clone(records)
	for i := range out {
		out[i].Fact = out[i].Fact.Normalize()
	}
	renumber(out)
	return Log{records: out}
}

func (l Log) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in log order.
func (l Log) Records() []Record {
	return slices.Clone(l.records)
}

// At returns the record at 1-based position.
func (l Log) At(position int) (Record, error) {
	if err := l.checkPosition(position); err != nil {
		return Record{}, err
	}
	return l.records[position-1], nil
}

// Last returns the most recent record.
func (l Log) Last() (Record, bool) {
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// Append validates the fact and adds it at the end.
func (l Log) Append(id string, fact Fact, recordedAt time.Time) (Log, Record, error) {
	return l.Insert(len(l.records)+1, id, fact, recordedAt)
}

// Insert validates the fact and places it at the 1-based position, shifting
// later records down. Position len+1 appends.
func (l Log) Insert(position int, id string, fact Fact, recordedAt time.Time) (Log, Record, error) {
	if position < 1 || position > len(l.records)+1 {
		return l, Record{}, errors.Wrapf(ErrUnknownMatchReference, "insert position %d out of range 1..%d", position, len(l.records)+1)
	}
	if err := fact.Validate(); err != nil {
		return l, Record{}, err
	}

	rec := Record{ID: id, RecordedAt: recordedAt, Fact: fact.Normalize()}
	out := make([]Record, 0, len(l.records)+1)
	out = append(out, l.records[:position-1]...)
	out = append(out, rec)
	out = append(out, l.records[position-1:]...)
	renumber(out)

	return Log{records: out}, out[position-1], nil
}

// Replace swaps the fact at position, keeping the record identity and timestamp.
func (l Log) Replace(position int, fact Fact) (Log, Record, error) {
	if err := l.checkPosition(position); err != nil {
		return l, Record{}, err
	}
	if err := fact.Validate(); err != nil {
		return l, Record{}, err
	}

	out := slices.Clone(l.records)
	out[position-1].Fact = fact.Normalize()
	return Log{records: out}, out[position-1], nil
}

// Delete removes the record at position and renumbers the rest.
func (l Log) Delete(position int) (Log, Record, error) {
	if err := l.checkPosition(position); err != nil {
		return l, Record{}, err
	}

	removed := l.records[position-1]
	out := make([]Record, 0, len(l.records)-1)
	out = append(out, l.records[:position-1]...)
	out = append(out, l.records[position:]...)
	renumber(out)

	return Log{records: out}, removed, nil
}

// RenameTeam rewrites every record that references from. The number of
// rewritten records is returned.
func (l Log) RenameTeam(from, to string) (Log, int, error) {
	from, to = team.NormalizeName(from), team.NormalizeName(to)
	if from == "" || to == "" {
		return l, 0, errors.Wrap(ErrInvalidMatchFact, "team names are required")
	}

	out := slices.Clone(l.records)
	changed := 0
	for i := range out {
		if !out[i].Involves(from) {
			continue
		}
		if out[i].HomeTeam == from {
			out[i].HomeTeam = to
		}
		if out[i].AwayTeam == from {
			out[i].AwayTeam = to
		}
		if out[i].HomeTeam == out[i].AwayTeam {
			return l, 0, errors.Wrapf(ErrInvalidMatchFact, "rename makes match %d a self-match", out[i].Position)
		}
		changed++
	}
	return Log{records: out}, changed, nil
}

// Teams returns the team names in order of first appearance.
func (l Log) Teams() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, rec := range l.records {
		for _, name := range [2]string{rec.HomeTeam, rec.AwayTeam} {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// HasTeam reports whether the named team appears in the log.
func (l Log) HasTeam(name string) bool {
	for _, rec := range l.records {
		if rec.Involves(name) {
			return true
		}
	}
	return false
}

func (l Log) checkPosition(position int) error {
	if position < 1 || position > len(l.records) {
		return errors.Wrapf(ErrUnknownMatchReference, "position %d out of range 1..%d", position, len(l.records))
	}
	return nil
}

func renumber(records []Record) {
	for i := range records {
		records[i].Position = i + 1
	}
}
