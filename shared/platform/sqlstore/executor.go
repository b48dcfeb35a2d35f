package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/shared/domain"
)

// Querier es el subconjunto de *sql.DB que usa el Executor.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Executor ejecuta sentencias parametrizadas y materializa las filas en Row.
type Executor struct {
	db      Querier
	dialect Dialect
	timeout time.Duration
	log     *zap.Logger
}

// NewExecutor crea un ejecutor. Un timeout <= 0 desactiva el límite por consulta.
func NewExecutor(db Querier, dialect Dialect, timeout time.Duration, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{db: db, dialect: dialect, timeout: timeout, log: log}
}

func (e *Executor) Dialect() Dialect { return e.dialect }

// Builder devuelve un StatementBuilder con el placeholder del dialecto.
func (e *Executor) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(e.dialect.Placeholder())
}

// Query construye y ejecuta una sentencia squirrel.
func (e *Executor) Query(ctx context.Context, q sq.Sqlizer) ([]*Row, error) {
	sqlText, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return e.QueryRaw(ctx, sqlText, args...)
}

// QueryRaw ejecuta texto SQL ya parametrizado. Filas, sentencia y conexión
// se liberan en cualquier camino de salida.
func (e *Executor) QueryRaw(ctx context.Context, query string, args ...any) ([]*Row, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	e.log.Debug("sql query", zap.String("sql", query), zap.Any("args", args))

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError("query", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, domain.NewStoreError("scan", err)
	}
	return out, nil
}

// QueryInt ejecuta una consulta que devuelve un único entero (COUNT, SUM).
// Sin filas, o con NULL, devuelve 0.
func (e *Executor) QueryInt(ctx context.Context, q sq.Sqlizer) (int64, error) {
	rows, err := e.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || rows[0].Len() == 0 {
		return 0, nil
	}
	v, _ := rows[0].Get(rows[0].Columns()[0])
	if v.IsNull() {
		return 0, nil
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, domain.NewStoreError("scan", fmt.Errorf("expected integer, got %s", v))
	}
	return n, nil
}

// Exec ejecuta una sentencia de escritura.
func (e *Executor) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	sqlText, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	e.log.Debug("sql exec", zap.String("sql", sqlText), zap.Any("args", args))

	res, err := e.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, domain.NewStoreError("exec", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Algunos drivers (ClickHouse) no informan filas afectadas.
		return 0, nil
	}
	return n, nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func scanRows(rows *sql.Rows) ([]*Row, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := make([]*Row, 0)
	raw := make([]any, len(types))
	dest := make([]any, len(types))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := NewRow(len(types))
		for i, ct := range types {
			row.Set(ct.Name(), convertValue(ct.DatabaseTypeName(), raw[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var textTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// convertValue es el único punto donde se interpreta el tipo de origen.
func convertValue(dbType string, raw any) Value {
	dbType = strings.ToUpper(dbType)

	switch v := raw.(type) {
	case nil:
		return Null()
	case time.Time:
		return String(v.Format(CanonicalTime))
	case *time.Time:
		if v == nil {
			return Null()
		}
		return String(v.Format(CanonicalTime))
	case []byte:
		return convertText(dbType, string(v))
	case string:
		return convertText(dbType, v)
	case bool:
		return Bool(v)
	case int64:
		if isBool(dbType) {
			return Bool(v != 0)
		}
		return Int(v)
	case int32:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int:
		return Int(int64(v))
	case uint64:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint8:
		return Int(int64(v))
	case float64:
		return Float(v)
	case float32:
		return Float(float64(v))
	case fmt.Stringer:
		// decimal.Decimal, uuid.UUID y similares.
		return convertText(dbType, v.String())
	}
	return String(fmt.Sprint(raw))
}

func convertText(dbType, s string) Value {
	switch {
	case isTemporal(dbType):
		for _, layout := range textTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return String(t.Format(CanonicalTime))
			}
		}
		return String(s)
	case isNumeric(dbType):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	case isBool(dbType):
		if b, err := strconv.ParseBool(s); err == nil {
			return Bool(b)
		}
	}
	return String(s)
}

func isTemporal(dbType string) bool {
	return strings.HasPrefix(dbType, "TIMESTAMP") ||
		strings.HasPrefix(dbType, "DATE") ||
		strings.HasPrefix(dbType, "NULLABLE(DATE")
}

func isBool(dbType string) bool {
	return dbType == "BOOL" || dbType == "BOOLEAN"
}

func isNumeric(dbType string) bool {
	return strings.HasPrefix(dbType, "NUMERIC") ||
		strings.HasPrefix(dbType, "DECIMAL") ||
		strings.HasPrefix(dbType, "NULLABLE(DECIMAL")
}
