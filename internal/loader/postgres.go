package loader

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// pgUndefinedTable is the SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

// Querier is the subset of *pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// PostgresSource reads a table of the same name from PostgreSQL.
// Every value is converted to its text form; SQL NULL becomes a null cell.
type PostgresSource struct {
	DB Querier
}

// Name implements Source.
func (s *PostgresSource) Name() string {
	return "postgres"
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context, table string) (core.Table, error) {
	query := "SELECT * FROM " + pgx.Identifier{table}.Sanitize()

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, pgLoadError(table, err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, fd := range descs {
		columns[i] = fd.Name
	}

	t := core.Table{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		t = append(t, pgRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, pgLoadError(table, err)
	}
	return t, nil
}

func pgLoadError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return ErrNoData
	}
	return fmt.Errorf("query %s: %w", table, err)
}

func pgRow(columns []string, values []any) core.Row {
	fields := make([]core.Field, len(columns))
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		if s, ok := pgValueString(v); ok {
			fields[i] = core.Str(col, s)
		} else {
			fields[i] = core.Null(col)
		}
	}
	return core.NewRow(fields...)
}

// pgValueString formats a decoded pgx value as text.
// It returns false for NULL.
func pgValueString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case bool:
		return strconv.FormatBool(val), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02"), true
		}
		return val.Format(time.RFC3339), true
	case pgtype.Numeric:
		if !val.Valid {
			return "", false
		}
		return numericString(val), true
	case [16]byte:
		return uuid.UUID(val).String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// numericString renders a numeric in plain decimal notation.
func numericString(n pgtype.Numeric) string {
	switch {
	case n.NaN:
		return "NaN"
	case n.InfinityModifier == pgtype.Infinity:
		return "Infinity"
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return "-Infinity"
	case n.Int == nil:
		return "0"
	}

	digits := new(big.Int).Abs(n.Int).String()
	sign := ""
	if n.Int.Sign() < 0 {
		sign = "-"
	}

	if n.Exp >= 0 {
		return sign + digits + strings.Repeat("0", int(n.Exp))
	}

	scale := int(-n.Exp)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	point := len(digits) - scale
	return sign + digits[:point] + "." + digits[point:]
}
