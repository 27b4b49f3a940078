package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/parquet-go/parquet-go"
)

// parquetBatchSize is the number of rows read per ReadRows call.
const parquetBatchSize = 256

// ParquetSource reads <Dir>/<table>.parquet. Only flat schemas are
// supported; nested columns are named by their dotted path.
type ParquetSource struct {
	Dir string
}

// Name implements Source.
func (s *ParquetSource) Name() string {
	return "parquet"
}

// Load implements Source.
func (s *ParquetSource) Load(ctx context.Context, table string) (core.Table, error) {
	path := filepath.Join(s.Dir, table+".parquet")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	t, err := readParquet(ctx, pf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func readParquet(ctx context.Context, pf *parquet.File) (core.Table, error) {
	paths := pf.Schema().Columns()
	columns := make([]string, len(paths))
	for i, p := range paths {
		columns[i] = strings.Join(p, ".")
	}

	t := core.Table{}
	buf := make([]parquet.Row, parquetBatchSize)
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readRowGroup(rg, columns, buf, &t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, columns []string, buf []parquet.Row, t *core.Table) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			*t = append(*t, parquetRow(columns, row))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
	}
}

// parquetRow converts one row to core form. Cells are ordered by column
// index, not by value order, so sparse rows still line up with the schema.
func parquetRow(columns []string, row parquet.Row) core.Row {
	cells := make([]*core.Field, len(columns))
	for _, v := range row {
		idx := v.Column()
		if idx < 0 || idx >= len(columns) || cells[idx] != nil {
			continue
		}
		f := core.Null(columns[idx])
		if !v.IsNull() {
			f = core.Str(columns[idx], parquetValueString(v))
		}
		cells[idx] = &f
	}

	fields := make([]core.Field, 0, len(columns))
	for _, f := range cells {
		if f != nil {
			fields = append(fields, *f)
		}
	}
	return core.NewRow(fields...)
}

func parquetValueString(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return sanitizeUTF8(string(v.ByteArray()))
	default:
		return v.String()
	}
}
