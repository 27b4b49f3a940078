package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"factors.csv":   "State,Score\nNY,3\nCA,5\nNY,4\n,\n",
		"treatment.csv": "Drug,Dose\naspirin,\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand_JSON(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "summary", "--data-dir", dir, "-o", "json")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"conditions": {"rows": 0},
		"factors": {
			"rows": 4,
			"numeric_columns": ["Score"],
			"stats": {"Score": {"count": 3, "mean": 4, "min": 3, "max": 5}}
		},
		"performance": {"rows": 0},
		"treatment": {"rows": 1, "numeric_columns": ["Dose"], "stats": {}}
	}`, out)
}

func TestSummaryCommand_Table(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "summary", "--data-dir", dir)
	require.NoError(t, err)

	for _, want := range []string{"conditions", "factors", "Score", "treatment"} {
		assert.Contains(t, out, want)
	}
}

func TestGroupCommand(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "group", "factors", "State", "--data-dir", dir, "--output", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"key": "NY", "count": 2},
		{"key": "CA", "count": 1},
		{"key": "Unknown", "count": 1}
	]`, out)

	out, err = run(t, "group", "factors", "State", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "NY")
	assert.Contains(t, out, "Unknown")
	assert.Contains(t, strings.ToLower(out), "total")
}

func TestGroupCommand_EmptyTable(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "group", "conditions", "State", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "(0 rows)\n", out)
}

func TestGroupCommand_Errors(t *testing.T) {
	dir := writeDataDir(t)

	_, err := run(t, "group", "nope", "State", "--data-dir", dir)
	assert.ErrorIs(t, err, core.ErrTableNotFound)

	_, err = run(t, "group", "factors", " ", "--data-dir", dir)
	assert.ErrorIs(t, err, core.ErrMissingField)

	_, err = run(t, "group", "factors", "--data-dir", dir)
	assert.Error(t, err)
}

func TestTablesCommand(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "tables", "--data-dir", dir, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name": "conditions", "rows": 0},
		{"name": "factors", "rows": 4},
		{"name": "performance", "rows": 0},
		{"name": "treatment", "rows": 1}
	]`, out)
}

func TestTablesFlag(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "tables", "--data-dir", dir, "--tables", "factors", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name": "factors", "rows": 4}]`, out)
}

func TestInvalidOutput(t *testing.T) {
	_, err := run(t, "summary", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output")
}
