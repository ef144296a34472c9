package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect picks the bind placeholder style of the generated SQL.
type Dialect int

const (
	// Dollar emits $1, $2 (PostgreSQL).
	Dollar Dialect = iota
	// Question emits ? (SQLite).
	Question
)

func (d Dialect) placeholder(i int) string {
	if d == Question {
		return "?"
	}
	return "$" + strconv.Itoa(i)
}

// writer accumulates SQL text and bind args for one statement.
type writer struct {
	buf     strings.Builder
	args    []any
	dialect Dialect
}

func (w *writer) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString(w.dialect.placeholder(len(w.args)))
}

type SelectBuilder struct {
	dialect Dialect
	columns []string
	table   string
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) Dialect(d Dialect) *SelectBuilder {
	b.dialect = d
	return b
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &writer{dialect: b.dialect}
	w.buf.WriteString("SELECT ")
	w.buf.WriteString(strings.Join(b.columns, ", "))
	w.buf.WriteString(" FROM ")
	w.buf.WriteString(b.table)
	if len(b.orderBy) > 0 {
		w.buf.WriteString(" ORDER BY ")
		w.buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	return w.buf.String(), w.args, nil
}

type InsertBuilder struct {
	dialect Dialect
	table   string
	columns []string
	rows    [][]any
	err     error
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Dialect(d Dialect) *InsertBuilder {
	b.dialect = d
	return b
}

// Model appends one row read from the db tags of a struct. The first model
// fixes the column list.
func (b *InsertBuilder) Model(model any) *InsertBuilder {
	if b.err != nil {
		return b
	}
	cols, vals, err := columnsAndValuesFromModel(model)
	if err != nil {
		b.err = err
		return b
	}
	if len(b.columns) == 0 {
		b.columns = cols
	}
	b.rows = append(b.rows, vals)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &writer{dialect: b.dialect}
	w.buf.WriteString("INSERT INTO ")
	w.buf.WriteString(b.table)
	w.buf.WriteString(" (")
	w.buf.WriteString(strings.Join(b.columns, ", "))
	w.buf.WriteString(") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.buf.WriteString(", ")
			}
			w.bind(value)
		}
		w.buf.WriteString(")")
	}
	return w.buf.String(), w.args, nil
}

// DeleteBuilder clears a whole table.
type DeleteBuilder struct {
	dialect Dialect
	table   string
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Dialect(d Dialect) *DeleteBuilder {
	b.dialect = d
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	return "DELETE FROM " + b.table, nil, nil
}
