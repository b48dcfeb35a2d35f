package stats

import (
	"encoding/json"

	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

const failedKey = "failed"

// Report es el resultado de un Reporter: estadísticas en el orden en que se
// declararon y, si alguna falló, sus nombres en Failed.
type Report struct {
	values *sqlstore.Row
	Failed []string
}

func NewReport() *Report {
	return &Report{values: sqlstore.NewRow(8)}
}

func (r *Report) Set(name string, v sqlstore.Value) { r.values.Set(name, v) }

func (r *Report) Get(name string) (sqlstore.Value, bool) { return r.values.Get(name) }

// Names devuelve las estadísticas presentes, en orden.
func (r *Report) Names() []string { return r.values.Columns() }

func (r *Report) Complete() bool { return len(r.Failed) == 0 }

func (r *Report) MarshalJSON() ([]byte, error) {
	if len(r.Failed) == 0 {
		return r.values.MarshalJSON()
	}
	out := r.values.Clone()
	out.Set(failedKey, sqlstore.Strings(r.Failed))
	return out.MarshalJSON()
}

func (r *Report) UnmarshalJSON(data []byte) error {
	row := sqlstore.NewRow(0)
	if err := row.UnmarshalJSON(data); err != nil {
		return err
	}
	r.Failed = nil
	if v, ok := row.Get(failedKey); ok {
		items, _ := v.AsList()
		for _, item := range items {
			if s, ok := item.AsString(); ok {
				r.Failed = append(r.Failed, s)
			}
		}
		row.Delete(failedKey)
	}
	r.values = row
	return nil
}

var (
	_ json.Marshaler   = (*Report)(nil)
	_ json.Unmarshaler = (*Report)(nil)
)
