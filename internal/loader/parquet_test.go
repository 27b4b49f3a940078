package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type performanceRecord struct {
	Site   string   `parquet:"site"`
	Score  float64  `parquet:"score"`
	Visits int64    `parquet:"visits"`
	Note   *string  `parquet:"note,optional"`
	Active bool     `parquet:"active"`
	Weight *float32 `parquet:"weight,optional"`
}

func writeParquet(t *testing.T, path string, records []performanceRecord) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := parquet.NewGenericWriter[performanceRecord](f)
	_, err = w.Write(records)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestParquetSource(t *testing.T) {
	dir := t.TempDir()
	note := "follow-up"
	writeParquet(t, filepath.Join(dir, "performance.parquet"), []performanceRecord{
		{Site: "north", Score: 91.5, Visits: 12, Note: &note, Active: true},
		{Site: "south", Score: 78, Visits: 3},
	})

	src := &ParquetSource{Dir: dir}
	tbl, err := src.Load(context.Background(), "performance")
	require.NoError(t, err)
	require.Len(t, tbl, 2)

	assert.ElementsMatch(t,
		[]string{"site", "score", "visits", "note", "active", "weight"},
		tbl[0].Columns())

	assert.Equal(t, "north", tbl[0].Value("site"))
	assert.Equal(t, "91.5", tbl[0].Value("score"))
	assert.Equal(t, "12", tbl[0].Value("visits"))
	assert.Equal(t, "follow-up", tbl[0].Value("note"))
	assert.Equal(t, "true", tbl[0].Value("active"))

	c, ok := tbl[1].Lookup("note")
	require.True(t, ok)
	assert.False(t, c.Valid)

	ts := core.SummarizeTable(tbl)
	assert.Contains(t, ts.NumericColumns, "score")
	assert.Contains(t, ts.NumericColumns, "visits")
	assert.NotContains(t, ts.NumericColumns, "site")

	st, ok := ts.Stats.Get("score")
	require.True(t, ok)
	assert.Equal(t, 78.0, st.Min)
	assert.Equal(t, 91.5, st.Max)
}

func TestParquetSource_Missing(t *testing.T) {
	_, err := (&ParquetSource{Dir: t.TempDir()}).Load(context.Background(), "factors")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParquetSource_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "factors.parquet"), []byte("not parquet"), 0o644))

	_, err := (&ParquetSource{Dir: dir}).Load(context.Background(), "factors")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}
