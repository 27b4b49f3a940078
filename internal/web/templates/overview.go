// Package templates holds the HTML components served by the web layer.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/a-h/templ"
)

// OverviewPage is the data rendered by Overview.
type OverviewPage struct {
	Snapshot string
	LoadedAt time.Time
	Summary  core.Summary
	// StaticDir is true when /static/ is mounted.
	StaticDir bool
}

// Overview renders a summary of every loaded table.
func Overview(p OverviewPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.write(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		ew.write(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		ew.write(`<title>Datasets</title>`)
		if p.StaticDir {
			ew.write(`<link rel="stylesheet" href="/static/style.css">`)
		}
		ew.write(`</head><body><main>`)
		ew.write(`<h1>Datasets</h1>`)
		ew.writef(`<p class="snapshot">Snapshot <code>%s</code> loaded %s</p>`,
			templ.EscapeString(p.Snapshot),
			templ.EscapeString(p.LoadedAt.UTC().Format(time.RFC3339)),
		)

		for _, entry := range p.Summary {
			if err := ctx.Err(); err != nil {
				return err
			}
			tableSection(ew, entry)
		}

		ew.write(`</main></body></html>`)
		return ew.err
	})
}

func tableSection(ew *errWriter, entry core.TableEntry) {
	name := templ.EscapeString(entry.Name)
	ew.writef(`<section id="table-%s"><h2>%s</h2>`, name, name)
	ew.writef(`<p>%s rows</p>`, strconv.Itoa(entry.Summary.Rows))

	if entry.Summary.Empty() {
		ew.write(`<p class="empty">No data loaded.</p></section>`)
		return
	}
	if len(entry.Summary.Stats) == 0 {
		ew.write(`<p class="empty">No numeric columns.</p></section>`)
		return
	}

	ew.write(`<table><thead><tr><th>Column</th><th>Count</th><th>Mean</th><th>Min</th><th>Max</th></tr></thead><tbody>`)
	for _, st := range entry.Summary.Stats {
		ew.writef(`<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			templ.EscapeString(st.Column),
			st.Count,
			formatFloat(st.Mean),
			formatFloat(st.Min),
			formatFloat(st.Max),
		)
	}
	ew.write(`</tbody></table></section>`)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// errWriter keeps the first write error so rendering reads straight through.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) writef(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
