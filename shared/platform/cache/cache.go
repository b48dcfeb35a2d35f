package cache

import (
	"context"
	"strings"
	"time"
)

// Cache es una caché clave-valor de lectura diferida (read-through).
type Cache interface {
	// Get rellena dest (puntero). (true, nil) en hit, (false, nil) en miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set serializa val y lo guarda durante ttl. ttl <= 0 usa el valor por defecto.
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// Key compone una clave con el prefijo de la aplicación: "opendata:a:b".
func Key(parts ...string) string {
	return "opendata:" + strings.Join(parts, ":")
}
