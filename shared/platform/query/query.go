package query

import (
	"strconv"

	"github.com/glitchjsy/opendata-api/shared/domain"
)

// ---------- Tipos de paginación / ordenamiento ----------

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "created_at", "id"
	Desc  bool
}

// Asc y Desc son atajos para declarar ordenaciones.
func Asc(field string) Sort  { return Sort{Field: field} }
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

// OrderBy traduce a cláusulas "campo DIR" en orden.
func OrderBy(sorts ...Sort) []string {
	out := make([]string, len(sorts))
	for i, s := range sorts {
		out[i] = s.String()
	}
	return out
}

func (s Sort) String() string {
	if s.Desc {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

// Limits define el tamaño de página por defecto y el máximo permitido.
type Limits struct {
	Default int
	Max     int
}

var DefaultLimits = Limits{Default: 30, Max: 100}

// PageRequest es una página ya validada: Page >= 1 y 1 <= Limit <= Max.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest aplica valores por defecto a los parámetros ausentes,
// rechaza valores < 1 y recorta el límite al máximo.
func NewPageRequest(page, limit *int, l Limits) (PageRequest, error) {
	pr := PageRequest{Page: 1, Limit: l.Default}
	if pr.Limit < 1 {
		pr.Limit = DefaultLimits.Default
	}
	if page != nil {
		if *page < 1 {
			return PageRequest{}, domain.NewInvalidInput("page", "must be a positive integer")
		}
		pr.Page = *page
	}
	if limit != nil {
		if *limit < 1 {
			return PageRequest{}, domain.NewInvalidInput("limit", "must be a positive integer")
		}
		pr.Limit = *limit
	}
	if l.Max > 0 && pr.Limit > l.Max {
		pr.Limit = l.Max
	}
	return pr, nil
}

// ParseOptionalInt convierte un parámetro opcional; "" equivale a ausente.
func ParseOptionalInt(field, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewInvalidInput(field, "must be an integer")
	}
	return &v, nil
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages = ceil(total/limit); 0 cuando no hay elementos.
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// Pagination es el bloque "pagination" de la respuesta.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
	TotalItems int64 `json:"totalItems"`
}

// PageResult agrupa la paginación y los resultados de una página.
type PageResult[T any] struct {
	Pagination Pagination `json:"pagination"`
	Results    []T        `json:"results"`
}

// NewPageResult deriva totalPages y garantiza un slice de resultados no nulo.
func NewPageResult[T any](req PageRequest, total int64, results []T) PageResult[T] {
	if results == nil {
		results = []T{}
	}
	return PageResult[T]{
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			TotalPages: TotalPages(total, req.Limit),
			TotalItems: total,
		},
		Results: results,
	}
}
