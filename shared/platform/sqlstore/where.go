package sqlstore

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/glitchjsy/opendata-api/shared/domain"
)

// Where traduce criterios neutrales a un predicado squirrel. Los valores
// siempre viajan como argumentos; sólo los nombres de columna, que vienen
// de definiciones estáticas, forman parte del texto SQL.
func Where(d Dialect, c domain.Criteria) sq.And {
	conds := c.ToConditions()
	out := make(sq.And, 0, len(conds))
	for _, crit := range conds {
		out = append(out, predicate(d, crit))
	}
	return out
}

// ApplyWhere añade el WHERE sólo si hay condiciones.
func ApplyWhere(b sq.SelectBuilder, d Dialect, c domain.Criteria) sq.SelectBuilder {
	if c == nil {
		return b
	}
	if pred := Where(d, c); len(pred) > 0 {
		return b.Where(pred)
	}
	return b
}

// WhereClause devuelve el fragmento "WHERE ..." y sus argumentos en orden,
// o una cadena vacía cuando no hay criterios.
func WhereClause(d Dialect, c domain.Criteria) (string, []any, error) {
	pred := Where(d, c)
	if len(pred) == 0 {
		return "", nil, nil
	}
	sqlText, args, err := pred.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "WHERE " + sqlText, args, nil
}

func predicate(d Dialect, c domain.Criterion) sq.Sqlizer {
	switch c.Op {
	case domain.OpEq:
		return sq.Eq{c.Field: c.Value}
	case domain.OpLike:
		return sq.Like{c.Field: c.Value}
	case domain.OpDateGte:
		return sq.Expr(d.DateCmp(c.Field, ">="), c.Value)
	case domain.OpDateLte:
		return sq.Expr(d.DateCmp(c.Field, "<="), c.Value)
	}
	return invalidPredicate{op: c.Op, field: c.Field}
}

type invalidPredicate struct {
	op    domain.Operator
	field string
}

func (p invalidPredicate) ToSql() (string, []interface{}, error) {
	return "", nil, fmt.Errorf("unsupported operator %q on %s", p.op, p.field)
}
