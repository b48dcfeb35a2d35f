package sqlstore

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// CanonicalTime es la representación única de columnas DATE/TIMESTAMP.
const CanonicalTime = "2006-01-02T15:04:05"

// Dialect aísla las diferencias de SQL entre motores: placeholders,
// extracción de partes de fecha y formato de argumentos temporales.
type Dialect interface {
	Name() string
	Placeholder() sq.PlaceholderFormat
	// Year y Month devuelven expresiones enteras.
	Year(col string) string
	Month(col string) string
	// Day devuelve el día como texto 'YYYY-MM-DD'.
	Day(col string) string
	// Weekday devuelve el nombre del día en inglés (Monday, Tuesday...).
	Weekday(col string) string
	// DateCmp compara la fecha de col con un argumento 'YYYY-MM-DD' o
	// 'YYYY/MM/DD'. El fragmento lleva un único placeholder.
	DateCmp(col, cmp string) string
	// TimeArg adapta un instante para compararlo con columnas temporales.
	// Las columnas guardan UTC.
	TimeArg(t time.Time) any
}

type postgresDialect struct{}

func (postgresDialect) Name() string                      { return "postgres" }
func (postgresDialect) Placeholder() sq.PlaceholderFormat { return sq.Dollar }
func (postgresDialect) Year(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(YEAR FROM %s) AS INTEGER)", col)
}
func (postgresDialect) Month(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", col)
}
func (postgresDialect) Day(col string) string {
	return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", col)
}
func (postgresDialect) Weekday(col string) string {
	return fmt.Sprintf("TRIM(TO_CHAR(%s, 'FMDay'))", col)
}
func (postgresDialect) DateCmp(col, cmp string) string {
	return fmt.Sprintf("DATE(%s) %s CAST(? AS DATE)", col, cmp)
}
func (postgresDialect) TimeArg(t time.Time) any { return t.UTC() }

type sqliteDialect struct{}

func (sqliteDialect) Name() string                      { return "sqlite" }
func (sqliteDialect) Placeholder() sq.PlaceholderFormat { return sq.Question }
func (sqliteDialect) Year(col string) string {
	return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
}
func (sqliteDialect) Month(col string) string {
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
}
func (sqliteDialect) Day(col string) string {
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col)
}
func (sqliteDialect) Weekday(col string) string {
	return fmt.Sprintf("CASE strftime('%%w', %s) "+
		"WHEN '0' THEN 'Sunday' WHEN '1' THEN 'Monday' WHEN '2' THEN 'Tuesday' "+
		"WHEN '3' THEN 'Wednesday' WHEN '4' THEN 'Thursday' WHEN '5' THEN 'Friday' "+
		"ELSE 'Saturday' END", col)
}

// SQLite compara fechas como texto: el argumento se normaliza a guiones.
func (sqliteDialect) DateCmp(col, cmp string) string {
	return fmt.Sprintf("DATE(%s) %s DATE(REPLACE(?, '/', '-'))", col, cmp)
}

// SQLite guarda las fechas como texto; se compara con el mismo formato.
func (sqliteDialect) TimeArg(t time.Time) any { return t.UTC().Format("2006-01-02 15:04:05") }

type clickhouseDialect struct{}

func (clickhouseDialect) Name() string                      { return "clickhouse" }
func (clickhouseDialect) Placeholder() sq.PlaceholderFormat { return sq.Question }
func (clickhouseDialect) Year(col string) string            { return fmt.Sprintf("toInt32(toYear(%s))", col) }
func (clickhouseDialect) Month(col string) string           { return fmt.Sprintf("toInt32(toMonth(%s))", col) }
func (clickhouseDialect) Day(col string) string             { return fmt.Sprintf("toString(toDate(%s))", col) }
func (clickhouseDialect) Weekday(col string) string         { return fmt.Sprintf("dateName('weekday', %s)", col) }
func (clickhouseDialect) DateCmp(col, cmp string) string {
	return fmt.Sprintf("toDate(%s) %s toDate(replaceAll(?, '/', '-'))", col, cmp)
}
func (clickhouseDialect) TimeArg(t time.Time) any { return t.UTC() }

var (
	Postgres   Dialect = postgresDialect{}
	SQLite     Dialect = sqliteDialect{}
	ClickHouse Dialect = clickhouseDialect{}
)

// DialectFor resuelve el dialecto a partir del nombre del driver database/sql.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	case "clickhouse":
		return ClickHouse, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}
