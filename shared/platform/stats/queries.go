package stats

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

// UnknownCategory sustituye a las categorías NULL en los agrupados.
const UnknownCategory = "unknown"

// Scalar devuelve el primer entero de la consulta (COUNT, SUM...).
func Scalar(exec *sqlstore.Executor, q sq.Sqlizer) ComputeFunc {
	return func(ctx context.Context) (sqlstore.Value, error) {
		n, err := exec.QueryInt(ctx, q)
		if err != nil {
			return sqlstore.Null(), err
		}
		return sqlstore.Int(n), nil
	}
}

// Rows devuelve las filas tal cual, como lista de objetos.
func Rows(exec *sqlstore.Executor, q sq.Sqlizer) ComputeFunc {
	return func(ctx context.Context) (sqlstore.Value, error) {
		rows, err := exec.Query(ctx, q)
		if err != nil {
			return sqlstore.Null(), err
		}
		return sqlstore.Objects(rows), nil
	}
}

// Single devuelve la primera fila como objeto, o un objeto vacío.
func Single(exec *sqlstore.Executor, q sq.Sqlizer) ComputeFunc {
	return func(ctx context.Context) (sqlstore.Value, error) {
		rows, err := exec.Query(ctx, q)
		if err != nil {
			return sqlstore.Null(), err
		}
		if len(rows) == 0 {
			return sqlstore.Object(sqlstore.NewRow(0)), nil
		}
		return sqlstore.Object(rows[0]), nil
	}
}

// Grouped convierte filas (categoría, valor) en un objeto categoría -> valor,
// conservando el orden de la consulta.
func Grouped(exec *sqlstore.Executor, q sq.Sqlizer, keyCol, valueCol string) ComputeFunc {
	return func(ctx context.Context) (sqlstore.Value, error) {
		rows, err := exec.Query(ctx, q)
		if err != nil {
			return sqlstore.Null(), err
		}
		out := sqlstore.NewRow(len(rows))
		for _, r := range rows {
			k, _ := r.Get(keyCol)
			key, ok := k.Key()
			if !ok {
				key = UnknownCategory
			}
			v, _ := r.Get(valueCol)
			out.Set(key, v)
		}
		return sqlstore.Object(out), nil
	}
}
