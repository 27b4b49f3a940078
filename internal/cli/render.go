package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTableWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderSummary prints one line per numeric column, and one line for
// tables that are empty or have no numeric columns.
func renderSummary(w io.Writer, sum core.Summary) {
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"Table", "Rows", "Column", "Count", "Mean", "Min", "Max"})

	for _, entry := range sum {
		if len(entry.Summary.Stats) == 0 {
			t.AppendRow(table.Row{entry.Name, entry.Summary.Rows, "-", "", "", "", ""})
			continue
		}
		for _, st := range entry.Summary.Stats {
			t.AppendRow(table.Row{
				entry.Name,
				entry.Summary.Rows,
				st.Column,
				st.Count,
				formatFloat(st.Mean),
				formatFloat(st.Min),
				formatFloat(st.Max),
			})
		}
	}

	t.Render()
}

func renderGroups(w io.Writer, field string, result core.GroupResult) {
	if len(result) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := newTableWriter(w)
	t.AppendHeader(table.Row{field, "Count"})
	for _, gc := range result {
		t.AppendRow(table.Row{gc.Key, gc.Count})
	}
	t.AppendFooter(table.Row{"Total", result.Total()})
	t.Render()
}

func renderTables(w io.Writer, entries []tableEntry) {
	t := newTableWriter(w)
	t.AppendHeader(table.Row{"Table", "Rows"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Name, e.Rows})
	}
	t.Render()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
