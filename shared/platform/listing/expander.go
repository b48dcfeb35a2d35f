package listing

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

type Cardinality int

const (
	OneToOne Cardinality = iota
	OneToMany
)

// Relation describe un sub-recurso que cuelga de la fila padre.
type Relation struct {
	Name       string // campo que se añade a la fila padre
	Table      string
	ForeignKey string // columna del hijo que apunta al padre
	Columns    []string
	OrderBy    []query.Sort
	Kind       Cardinality
}

// Expander enriquece una página de filas padre con una consulta IN por
// relación, nunca una por fila.
type Expander struct {
	exec      *sqlstore.Executor
	parentKey string
	relations []Relation
	log       *zap.Logger
}

func NewExpander(exec *sqlstore.Executor, parentKey string, log *zap.Logger, relations ...Relation) *Expander {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expander{exec: exec, parentKey: parentKey, relations: relations, log: log}
}

// Expand devuelve copias de las filas padre con un campo extra por relación.
// Las filas de entrada no se modifican. Con una página vacía no se lanza
// ninguna consulta.
func (e *Expander) Expand(ctx context.Context, parents []*sqlstore.Row) ([]*sqlstore.Row, error) {
	out := make([]*sqlstore.Row, len(parents))
	for i, p := range parents {
		out[i] = p.Clone()
	}
	if len(parents) == 0 || len(e.relations) == 0 {
		return out, nil
	}

	ids := e.distinctIDs(parents)
	if len(ids) == 0 {
		return out, nil
	}

	for _, rel := range e.relations {
		grouped, err := e.fetch(ctx, rel, ids)
		if err != nil {
			e.log.Error("sub-resource expansion failed",
				zap.String("relation", rel.Name),
				zap.String("table", rel.Table),
				zap.Error(err))
			return nil, domain.NewStoreError("expand "+rel.Name, err)
		}

		for _, row := range out {
			key, _ := e.keyOf(row)
			children := grouped[key]
			switch rel.Kind {
			case OneToOne:
				if len(children) == 0 {
					row.Set(rel.Name, sqlstore.Null())
				} else {
					row.Set(rel.Name, sqlstore.Object(children[0]))
				}
			default:
				row.Set(rel.Name, sqlstore.Objects(children))
			}
		}
	}
	return out, nil
}

func (e *Expander) keyOf(row *sqlstore.Row) (string, bool) {
	v, ok := row.Get(e.parentKey)
	if !ok {
		return "", false
	}
	return v.Key()
}

// distinctIDs devuelve los ids sin repetir; el orden no importa.
func (e *Expander) distinctIDs(parents []*sqlstore.Row) []any {
	seen := make(map[string]struct{}, len(parents))
	ids := make([]any, 0, len(parents))
	for _, p := range parents {
		v, _ := p.Get(e.parentKey)
		key, ok := v.Key()
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, v.Raw())
	}
	return ids
}

func (e *Expander) fetch(ctx context.Context, rel Relation, ids []any) (map[string][]*sqlstore.Row, error) {
	q := e.exec.Builder().
		Select(relationColumns(rel)...).
		From(rel.Table).
		Where(sq.Eq{rel.ForeignKey: ids})
	if len(rel.OrderBy) > 0 {
		q = q.OrderBy(query.OrderBy(rel.OrderBy...)...)
	}

	rows, err := e.exec.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*sqlstore.Row, len(ids))
	for _, r := range rows {
		fk, _ := r.Get(rel.ForeignKey)
		key, ok := fk.Key()
		if !ok {
			continue
		}
		grouped[key] = append(grouped[key], r)
	}
	return grouped, nil
}

// relationColumns garantiza que la clave foránea viaja en la consulta.
func relationColumns(rel Relation) []string {
	if len(rel.Columns) == 0 {
		return []string{"*"}
	}
	for _, c := range rel.Columns {
		if c == rel.ForeignKey {
			return rel.Columns
		}
	}
	return append(append([]string(nil), rel.Columns...), rel.ForeignKey)
}
