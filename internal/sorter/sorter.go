// Package sorter orders leaderboard rows by a single column with a
// comparator chosen from the column's type.
package sorter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnknownColumn is returned when a column index is outside the leaderboard.
var ErrUnknownColumn = errors.New("unknown column")

// Column identifies a leaderboard column.
type Column int

const (
	ColumnRank Column = iota
	ColumnName
	ColumnCount
	ColumnLastRun
)

// NumColumns is the number of leaderboard columns.
const NumColumns = 4

// Columns lists every column in display order.
var Columns = [NumColumns]Column{ColumnRank, ColumnName, ColumnCount, ColumnLastRun}

// Valid reports whether c is one of the known columns.
func (c Column) Valid() bool {
	return c >= ColumnRank && c <= ColumnLastRun
}

func (c Column) String() string {
	switch c {
	case ColumnRank:
		return "rank"
	case ColumnName:
		return "pokemon"
	case ColumnCount:
		return "count"
	case ColumnLastRun:
		return "last time ran"
	default:
		return fmt.Sprintf("column(%d)", int(c))
	}
}

// ParseColumn accepts a column name or its 1-based position.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "rank":
		return ColumnRank, nil
	case "2", "name", "pokemon":
		return ColumnName, nil
	case "3", "count":
		return ColumnCount, nil
	case "4", "last", "lastrun", "last_run", "last time ran":
		return ColumnLastRun, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, s)
}

// Direction is the order applied to a column comparator.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Arrow returns the header indicator for d.
func (d Direction) Arrow() string {
	if d == Descending {
		return "↓"
	}
	return "↑"
}

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Row is one leaderboard line: display text indexed by Column.
type Row [NumColumns]string

// Cell returns the trimmed text of column c.
func (r Row) Cell(c Column) string {
	if !c.Valid() {
		return ""
	}
	return strings.TrimSpace(r[c])
}

// SortState remembers the direction of every column, true meaning ascending.
// It is a value; Sort hands back an updated copy.
type SortState [NumColumns]bool

// NewSortState returns the state of a freshly loaded table: every column
// ascending, so the first sort on a column flips it to descending.
func NewSortState() SortState {
	return SortState{true, true, true, true}
}

// Direction returns the stored direction of c.
func (s SortState) Direction(c Column) Direction {
	if c.Valid() && !s[c] {
		return Descending
	}
	return Ascending
}

// Toggle returns a copy of s with c flipped.
func (s SortState) Toggle(c Column) SortState {
	if c.Valid() {
		s[c] = !s[c]
	}
	return s
}

// Result is the outcome of one sort.
type Result struct {
	Rows      []Row
	State     SortState
	Active    Column
	Direction Direction
}

// Sorter sorts rows. The zero value collates names as English.
type Sorter struct {
	Locale language.Tag
}

// New returns a Sorter collating names for the given BCP 47 locale.
func New(locale string) (*Sorter, error) {
	if strings.TrimSpace(locale) == "" {
		return &Sorter{Locale: language.English}, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &Sorter{Locale: tag}, nil
}

// Sort toggles the direction stored for column, then returns rows ordered by
// that column in the new direction. rows is not modified.
func (s *Sorter) Sort(rows []Row, column Column, state SortState) (Result, error) {
	if !column.Valid() {
		return Result{State: state}, fmt.Errorf("%w: %d", ErrUnknownColumn, int(column))
	}

	next := state.Toggle(column)
	dir := next.Direction(column)

	out := make([]Row, len(rows))
	copy(out, rows)

	compare := s.comparator(column)
	if dir == Descending {
		asc := compare
		compare = func(a, b string) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		return compare(a.Cell(column), b.Cell(column))
	})

	return Result{
		Rows:      out,
		State:     next,
		Active:    column,
		Direction: dir,
	}, nil
}

func (s *Sorter) comparator(column Column) func(a, b string) int {
	switch column {
	case ColumnRank, ColumnCount:
		return CompareNumeric
	case ColumnLastRun:
		return CompareDate
	default:
		tag := s.Locale
		if tag == language.Und {
			tag = language.English
		}
		col := collate.New(tag)
		return func(a, b string) int {
			return col.CompareString(a, b)
		}
	}
}
