package domain

import (
	"fmt"
	"strings"
)

// Review column names. They match the column order of the raw review exports.
const (
	ColumnUserName    = "user_name"
	ColumnMovieName   = "movie_name"
	ColumnReleaseYear = "release_year"
	ColumnUserReview  = "user_review"
	ColumnUserRating  = "user_rating"
	ColumnReviewDate  = "review_date"
	ColumnRewatched   = "rewatched"
	ColumnReviewLikes = "review_likes"
)

// ReviewColumns is the default column list of a review export
var ReviewColumns = []string{
	ColumnUserName,
	ColumnMovieName,
	ColumnReleaseYear,
	ColumnUserReview,
	ColumnUserRating,
	ColumnReviewDate,
	ColumnRewatched,
	ColumnReviewLikes,
}

// ColumnKind describes what a column holds. Kinds are declarative; values
// are kept as raw text and never parsed against them.
type ColumnKind string

const (
	KindText    ColumnKind = "text"
	KindInteger ColumnKind = "integer"
	KindFloat   ColumnKind = "float"
	KindBool    ColumnKind = "bool"
	KindDate    ColumnKind = "date"
)

var reviewColumnKinds = map[string]ColumnKind{
	ColumnUserName:    KindText,
	ColumnMovieName:   KindText,
	ColumnReleaseYear: KindInteger,
	ColumnUserReview:  KindText,
	ColumnUserRating:  KindFloat,
	ColumnReviewDate:  KindDate,
	ColumnRewatched:   KindBool,
	ColumnReviewLikes: KindInteger,
}

// Column is a named, typed column of a Schema
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Kind ColumnKind `json:"kind" yaml:"kind"`
}

// Schema is the ordered column layout shared by every Record of a Table
type Schema struct {
	Columns []Column `json:"columns"`
	index   map[string]int
}

// NewSchema builds a schema from column names. Known review columns get
// their fixed kind, anything else is text.
func NewSchema(names ...string) *Schema {
	s := &Schema{
		Columns: make([]Column, 0, len(names)),
		index:   make(map[string]int, len(names)),
	}
	for i, name := range names {
		kind, ok := reviewColumnKinds[name]
		if !ok {
			kind = KindText
		}
		s.Columns = append(s.Columns, Column{Name: name, Kind: kind})
		s.index[name] = i
	}
	return s
}

// ReviewSchema returns the default eight-column review schema
func ReviewSchema() *Schema {
	return NewSchema(ReviewColumns...)
}

// Width returns the number of columns
func (s *Schema) Width() int {
	return len(s.Columns)
}

// Names returns the column names in order
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the position of a column, or -1 when it is not part of the schema
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Column returns the column definition for name
func (s *Schema) Column(name string) (Column, bool) {
	i := s.IndexOf(name)
	if i < 0 {
		return Column{}, false
	}
	return s.Columns[i], true
}

// Record is one row of review data. Values are positional and follow the schema.
type Record []string

// Key returns a string that is equal for two records exactly when all their
// values are equal. Values are length-prefixed so separators inside a value
// cannot produce collisions.
func (r Record) Key() string {
	var b strings.Builder
	for _, v := range r {
		fmt.Fprintf(&b, "%d:%s|", len(v), v)
	}
	return b.String()
}

// Clone returns a copy that does not share the backing array
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Table is an ordered collection of records sharing a schema. The row index
// of a record is its position in Rows, so a table is always contiguously indexed.
type Table struct {
	Schema *Schema
	Rows   []Record
}

// NewTable creates an empty table for schema
func NewTable(schema *Schema) *Table {
	return &Table{Schema: schema, Rows: make([]Record, 0)}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds records at the end of the table
func (t *Table) Append(records ...Record) {
	t.Rows = append(t.Rows, records...)
}

// Value returns the value of column in row
func (t *Table) Value(row int, column string) (string, bool) {
	i := t.Schema.IndexOf(column)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	return t.Rows[row][i], true
}

// Clone returns a deep copy of the table rows. The schema is shared.
func (t *Table) Clone() *Table {
	rows := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return &Table{Schema: t.Schema, Rows: rows}
}
