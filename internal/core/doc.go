// Package core provides the in-memory dataset engine behind the API.
//
// The package holds no I/O. A [Store] is built once by the loader and is
// read-only afterwards; every function here is a pure read over it, so
// handlers may call them concurrently without locking.
//
// # Data Model
//
// A [Row] is an ordered mapping from column name to [Cell]. A column can be
// absent from a row, present but null, or present with a string value that
// may be empty or blank. Grouping treats all of these differently from a
// real value:
//
//	row := core.NewRow(core.Str("State", "CA"), core.Null("Region"))
//	row.Lookup("State")  // Cell{Value: "CA", Valid: true}, true
//	row.Lookup("Region") // Cell{}, true
//	row.Lookup("Zip")    // Cell{}, false
//
// # Summaries
//
// [Summarize] walks every table of a Store in order. Numeric columns are
// sniffed with [NumericColumns]: a column is numeric when every cell is
// either empty or accepted by [ParseNumber]. [ComputeStats] then reports
// count, mean, min and max over the non-empty cells.
//
// # Grouping
//
// [GroupBy] counts the distinct values of one field, preserving first-seen
// order. Absent, null and blank values all collapse to [UnknownKey].
//
// # Error Codes
//
// The engine itself never fails. Boundary errors such as [ErrTableNotFound]
// and [ErrMissingField] are mapped to user-facing messages by [MapError].
package core
