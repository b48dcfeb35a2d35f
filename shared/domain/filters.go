package domain

import (
	"regexp"
	"strings"
	"time"
)

// DatePattern acepta YYYY-MM-DD y YYYY/MM/DD.
var DatePattern = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)

// ValidateDate comprueba primero el formato y después que la fecha exista.
// El valor se sigue enlazando sin modificar.
func ValidateDate(field, raw string) error {
	if !DatePattern.MatchString(raw) {
		return NewInvalidInput(field, "use the format YYYY-MM-DD or YYYY/MM/DD")
	}
	if _, err := time.Parse("2006-01-02", strings.ReplaceAll(raw, "/", "-")); err != nil {
		return NewInvalidInput(field, "not a calendar date")
	}
	return nil
}

// FilterDef asocia un parámetro de entrada a una columna y un operador.
type FilterDef struct {
	Key   string
	Field string
	Op    Operator
}

// FilterSet es la lista ordenada y fija de filtros que admite un listado.
type FilterSet struct {
	defs []FilterDef
}

func NewFilterSet(defs ...FilterDef) FilterSet {
	return FilterSet{defs: append([]FilterDef(nil), defs...)}
}

// Keys devuelve los parámetros reconocidos en orden.
func (fs FilterSet) Keys() []string {
	keys := make([]string, len(fs.defs))
	for i, d := range fs.defs {
		keys[i] = d.Key
	}
	return keys
}

// Collect lee los parámetros reconocidos con get (p.ej. gin.Context.Query).
func (fs FilterSet) Collect(get func(key string) string) map[string]string {
	out := make(map[string]string, len(fs.defs))
	for _, d := range fs.defs {
		if v := get(d.Key); v != "" {
			out[d.Key] = v
		}
	}
	return out
}

// Build evalúa las definiciones en orden y devuelve sólo las condiciones
// cuyo valor de entrada no está vacío. Las fechas se validan aquí, antes de
// llegar a la base de datos.
func (fs FilterSet) Build(inputs map[string]string) (PredicateSet, error) {
	var conds []Criterion
	for _, d := range fs.defs {
		raw, ok := inputs[d.Key]
		if !ok || raw == "" {
			continue
		}

		var value interface{} = raw
		switch d.Op {
		case OpDateGte, OpDateLte:
			if err := ValidateDate(d.Key, raw); err != nil {
				return PredicateSet{}, err
			}
		case OpLike:
			value = "%" + raw + "%"
		}
		conds = append(conds, Criterion{Field: d.Field, Op: d.Op, Value: value})
	}
	return PredicateSet{conds: conds}, nil
}

// PredicateSet es inmutable: cada llamada a ToConditions devuelve una copia.
type PredicateSet struct {
	conds []Criterion
}

func (p PredicateSet) ToConditions() []Criterion {
	return append([]Criterion(nil), p.conds...)
}

func (p PredicateSet) Len() int { return len(p.conds) }

var _ Criteria = PredicateSet{}
