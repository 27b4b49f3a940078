package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/datasets/internal/core"
)

// contextCheckInterval is how often (in records) parsing checks for cancellation.
const contextCheckInterval = 1000

// utf8BOM is the byte order mark some Windows tools prepend to CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads <Dir>/<table>.csv. The first record is the header.
type CSVSource struct {
	Dir string
}

// Name implements Source.
func (s *CSVSource) Name() string {
	return "csv"
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context, table string) (core.Table, error) {
	path := filepath.Join(s.Dir, table+".csv")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses CSV data into a table keyed by the header record.
//
// A leading BOM is dropped and invalid UTF-8 is replaced with U+FFFD.
// Records may be shorter or longer than the header: missing trailing
// columns are left absent and extra cells are ignored. Columns with a
// blank header are skipped. An empty input yields an empty table.
func ReadCSV(ctx context.Context, r io.Reader) (core.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	rawHeader, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	header := make([]string, len(rawHeader))
	keep := make([]bool, len(rawHeader))
	for i, h := range rawHeader {
		header[i] = strings.TrimSpace(sanitizeUTF8(h))
		keep[i] = header[i] != ""
	}

	t := core.Table{}
	for n := 0; ; n++ {
		if n%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n+1, err)
		}

		fields := make([]core.Field, 0, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			if !keep[i] {
				continue
			}
			fields = append(fields, core.Str(name, sanitizeUTF8(record[i])))
		}
		t = append(t, core.NewRow(fields...))
	}

	return t, nil
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
