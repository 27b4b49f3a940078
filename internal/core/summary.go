package core

import (
	"bytes"
	"encoding/json"
)

// TableSummary describes one table.
// Empty tables carry only Rows; NumericColumns and Stats are nil.
type TableSummary struct {
	Rows           int
	NumericColumns []string
	Stats          StatsByColumn
}

// Empty reports whether the summary is for a table with no rows.
func (ts TableSummary) Empty() bool {
	return ts.Rows == 0
}

// MarshalJSON encodes an empty table as {"rows":0} and anything else with
// numeric_columns and stats always present.
func (ts TableSummary) MarshalJSON() ([]byte, error) {
	if ts.Empty() {
		return []byte(`{"rows":0}`), nil
	}

	cols := ts.NumericColumns
	if cols == nil {
		cols = []string{}
	}
	colsJSON, err := json.Marshal(cols)
	if err != nil {
		return nil, err
	}
	statsJSON, err := ts.Stats.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"rows":`)
	rows, _ := json.Marshal(ts.Rows)
	buf.Write(rows)
	buf.WriteString(`,"numeric_columns":`)
	buf.Write(colsJSON)
	buf.WriteString(`,"stats":`)
	buf.Write(statsJSON)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ColumnStat pairs a column name with its statistics.
type ColumnStat struct {
	Column string
	ColumnStats
}

// StatsByColumn is an ordered column -> stats mapping.
type StatsByColumn []ColumnStat

// Get returns the stats for col.
func (s StatsByColumn) Get(col string) (ColumnStats, bool) {
	for _, cs := range s {
		if cs.Column == col {
			return cs.ColumnStats, true
		}
	}
	return ColumnStats{}, false
}

// MarshalJSON encodes the stats as an object keyed by column, in order.
func (s StatsByColumn) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cs := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, cs.Column); err != nil {
			return nil, err
		}
		v, err := json.Marshal(cs.ColumnStats)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TableEntry pairs a table name with its summary.
type TableEntry struct {
	Name    string
	Summary TableSummary
}

// Summary is the ordered per-table overview of a Store.
type Summary []TableEntry

// Get returns the summary for the named table.
func (s Summary) Get(name string) (TableSummary, bool) {
	for _, e := range s {
		if e.Name == name {
			return e.Summary, true
		}
	}
	return TableSummary{}, false
}

// MarshalJSON encodes the summary as an object keyed by table, in order.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, e.Name); err != nil {
			return nil, err
		}
		v, err := e.Summary.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SummarizeTable computes the summary of a single table.
func SummarizeTable(t Table) TableSummary {
	if len(t) == 0 {
		return TableSummary{}
	}

	cols := NumericColumns(t)
	stats := make(StatsByColumn, 0, len(cols))
	for _, col := range cols {
		if st, ok := ComputeStats(t, col); ok {
			stats = append(stats, ColumnStat{Column: col, ColumnStats: st})
		}
	}
	return TableSummary{
		Rows:           len(t),
		NumericColumns: cols,
		Stats:          stats,
	}
}

// Summarize computes the summary of every table in s, in store order.
// It never fails; malformed cells only shrink the result.
func Summarize(s *Store) Summary {
	if s == nil {
		return Summary{}
	}
	out := make(Summary, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, TableEntry{Name: name, Summary: SummarizeTable(s.tables[name])})
	}
	return out
}
