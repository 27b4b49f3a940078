package core

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Dataset names served by the API. The loader always populates all of them.
const (
	TableConditions  = "conditions"
	TableFactors     = "factors"
	TablePerformance = "performance"
	TableTreatment   = "treatment"
)

// DefaultTables returns the fixed dataset names in display order.
func DefaultTables() []string {
	return []string{TableConditions, TableFactors, TablePerformance, TableTreatment}
}

// Cell is a single row value. Valid is false for null.
type Cell struct {
	Value string
	Valid bool
}

// Field pairs a column name with a cell when building rows.
type Field struct {
	Name string
	Cell Cell
}

// Str returns a field holding a string value.
func Str(name, value string) Field {
	return Field{Name: name, Cell: Cell{Value: value, Valid: true}}
}

// Null returns a field that is present but null.
func Null(name string) Field {
	return Field{Name: name}
}

// Row is an ordered mapping from column name to cell.
// The zero value is an empty row.
type Row struct {
	columns []string
	cells   map[string]Cell
}

// NewRow builds a row from fields, keeping their order.
// A repeated name keeps its first position and takes the last cell.
func NewRow(fields ...Field) Row {
	r := Row{
		columns: make([]string, 0, len(fields)),
		cells:   make(map[string]Cell, len(fields)),
	}
	for _, f := range fields {
		if _, seen := r.cells[f.Name]; !seen {
			r.columns = append(r.columns, f.Name)
		}
		r.cells[f.Name] = f.Cell
	}
	return r
}

// RowFromRecord builds a row from a header and a record of equal or shorter
// length. Columns past the end of record are left absent.
func RowFromRecord(header, record []string) Row {
	fields := make([]Field, 0, len(header))
	for i, name := range header {
		if i >= len(record) {
			break
		}
		fields = append(fields, Str(name, record[i]))
	}
	return NewRow(fields...)
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns present in the row.
func (r Row) Len() int {
	return len(r.columns)
}

// Lookup returns the cell for col and whether the column is present.
func (r Row) Lookup(col string) (Cell, bool) {
	c, ok := r.cells[col]
	return c, ok
}

// Value returns the string value for col, or "" when absent or null.
func (r Row) Value(col string) string {
	return r.cells[col].Value
}

// MarshalJSON encodes the row as an object in column order.
// Null cells encode as JSON null.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, col); err != nil {
			return nil, err
		}
		c := r.cells[col]
		if !c.Valid {
			buf.WriteString("null")
			continue
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is an ordered sequence of rows for one dataset.
type Table []Row

// Store is an immutable snapshot of all loaded tables.
type Store struct {
	id       uuid.UUID
	loadedAt time.Time
	names    []string
	tables   map[string]Table
}

// NewStore creates a snapshot holding the given tables in names order.
// Names without an entry in tables are stored as empty tables.
func NewStore(names []string, tables map[string]Table) *Store {
	s := &Store{
		id:       uuid.New(),
		loadedAt: time.Now(),
		names:    make([]string, 0, len(names)),
		tables:   make(map[string]Table, len(names)),
	}
	for _, name := range names {
		if _, dup := s.tables[name]; dup {
			continue
		}
		t := tables[name]
		if t == nil {
			t = Table{}
		}
		s.names = append(s.names, name)
		s.tables[name] = t
	}
	return s
}

// ID returns the snapshot identifier.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// LoadedAt returns when the snapshot was built.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// Names returns the table names in store order.
func (s *Store) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Table returns the named table. Callers must not modify it.
func (s *Store) Table(name string) (Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Lookup is like Table but returns ErrTableNotFound for unknown names.
func (s *Store) Lookup(name string) (Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, &TableNotFoundError{Name: name}
	}
	return t, nil
}

// RowCounts returns the number of rows per table.
func (s *Store) RowCounts() map[string]int {
	out := make(map[string]int, len(s.names))
	for _, name := range s.names {
		out[name] = len(s.tables[name])
	}
	return out
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}
