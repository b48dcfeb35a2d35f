package listing

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

// Source describe la tabla que se pagina.
type Source struct {
	Table   string
	Columns []string // vacío = "*"
	OrderBy []query.Sort
}

// Lister pagina una tabla: un COUNT(*) y una consulta LIMIT/OFFSET con el
// mismo predicado y los mismos argumentos.
type Lister struct {
	exec   *sqlstore.Executor
	source Source
}

func NewLister(exec *sqlstore.Executor, source Source) *Lister {
	return &Lister{exec: exec, source: source}
}

// List no envuelve las dos lecturas en una transacción: una escritura
// concurrente entre ambas puede desalinear totalItems y results.
func (l *Lister) List(ctx context.Context, where domain.Criteria, page query.PageRequest) (query.PageResult[*sqlstore.Row], error) {
	countQ := sqlstore.ApplyWhere(
		l.exec.Builder().Select("COUNT(*)").From(l.source.Table),
		l.exec.Dialect(),
		where,
	)
	total, err := l.exec.QueryInt(ctx, countQ)
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, domain.NewStoreError("count "+l.source.Table, err)
	}

	rows, err := l.exec.Query(ctx, l.pageQuery(where, page))
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, domain.NewStoreError("list "+l.source.Table, err)
	}

	return query.NewPageResult(page, total, rows), nil
}

func (l *Lister) pageQuery(where domain.Criteria, page query.PageRequest) sq.SelectBuilder {
	cols := l.source.Columns
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	b := sqlstore.ApplyWhere(l.exec.Builder().Select(cols...).From(l.source.Table), l.exec.Dialect(), where)
	if len(l.source.OrderBy) > 0 {
		b = b.OrderBy(query.OrderBy(l.source.OrderBy...)...)
	}
	// Limit()/Offset() de squirrel interpolan el número; se usan argumentos.
	return b.Suffix("LIMIT ? OFFSET ?", page.Limit, page.Offset())
}
