package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/glitchjsy/opendata-api/shared/platform/query"
)

// OptionalInt lee un parámetro entero opcional de la query string.
func OptionalInt(c *gin.Context, key string) (*int, error) {
	return query.ParseOptionalInt(key, c.Query(key))
}

// PageParams lee page y limit; los valores por defecto los aplica el servicio.
func PageParams(c *gin.Context) (page, limit *int, err error) {
	if page, err = OptionalInt(c, "page"); err != nil {
		return nil, nil, err
	}
	if limit, err = OptionalInt(c, "limit"); err != nil {
		return nil, nil, err
	}
	return page, limit, nil
}
