package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const asyncTimeout = 200 * time.Millisecond

// AsyncCacheSet actualiza la caché en background sin bloquear la respuesta.
// Usa un contexto propio: la petición HTTP puede haber terminado ya.
func AsyncCacheSet(c Cache, key string, value interface{}, ttl time.Duration, log *zap.Logger) {
	if c == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := c.Set(ctx, key, value, ttl); err != nil {
			log.Warn("Cache update failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

// Lookup consulta la caché tratando cualquier error como un miss.
func Lookup(ctx context.Context, c Cache, key string, dest interface{}, log *zap.Logger) bool {
	if c == nil {
		return false
	}
	ok, err := c.Get(ctx, key, dest)
	if err != nil {
		log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}
