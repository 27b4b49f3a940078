package core

// numeric.go sniffs numeric columns and computes their statistics.
//
// Cells are always strings. A column counts as numeric when every non-blank
// cell matches numberRegex; nothing else is coerced (no currency symbols,
// thousands separators, booleans, NaN or Infinity).

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberRegex matches integers, decimals, and scientific notation.
var numberRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses s as a finite float64.
// Surrounding whitespace is ignored. Blank input is not a number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numberRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumericColumns returns the columns of t's first row, in order, for which
// every row holds either a blank cell or a number. Absent and null cells
// count as blank.
func NumericColumns(t Table) []string {
	if len(t) == 0 {
		return []string{}
	}

	candidates := t[0].Columns()
	out := make([]string, 0, len(candidates))
	for _, col := range candidates {
		if isNumericColumn(t, col) {
			out = append(out, col)
		}
	}
	return out
}

func isNumericColumn(t Table, col string) bool {
	for _, row := range t {
		v := row.Value(col)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := ParseNumber(v); !ok {
			return false
		}
	}
	return true
}

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// ComputeStats summarizes the parseable, non-empty values of col.
// It returns false when the column has no such values.
func ComputeStats(t Table, col string) (ColumnStats, bool) {
	var (
		st  ColumnStats
		sum float64
	)
	for _, row := range t {
		v := row.Value(col)
		if v == "" {
			continue
		}
		f, ok := ParseNumber(v)
		if !ok {
			continue
		}
		if st.Count == 0 || f < st.Min {
			st.Min = f
		}
		if st.Count == 0 || f > st.Max {
			st.Max = f
		}
		sum += f
		st.Count++
	}
	if st.Count == 0 {
		return ColumnStats{}, false
	}
	// Clamp rounding drift so min <= mean <= max always holds.
	st.Mean = math.Min(math.Max(sum/float64(st.Count), st.Min), st.Max)
	return st, true
}
