package middleware

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/smartromaric/notes-suite/internal/config"
)

// bodyCapture tees the response body so a successful reply can be stored
// after it has been sent to the client.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if w.buf.Len() < w.limit {
		room := w.limit - w.buf.Len()
		if len(b) <= room {
			w.buf.Write(b)
		} else {
			w.buf.Write(b[:room])
		}
	}
	return w.ResponseWriter.Write(b)
}

// CachePublicNote returns read-through cache middleware for the anonymous
// GET /p/:token endpoint. Entries are keyed by token and live for the
// configured TTL, which bounds how long a revoked or freshly expired link
// can still be served from cache. Without redis the middleware is a
// pass-through. Only 200 responses are cached: negative caching would let
// an attacker pin "not found" over a token that just became valid.
func CachePublicNote(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cfg.Prefix + ":public-note:" + c.Param("token")
			ctx := c.Request().Context()

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
			} else if err != redis.Nil {
				c.Logger().Warnf("cache: redis get failed for key=%s: %v", key, err)
				return next(c)
			}

			capture := &bodyCapture{ResponseWriter: c.Response().Writer, limit: cfg.MaxBodyBytes}
			c.Response().Writer = capture
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if capture.status == http.StatusOK && capture.buf.Len() > 0 && capture.buf.Len() < cfg.MaxBodyBytes {
				if err := rdb.Set(ctx, key, capture.buf.Bytes(), cfg.TTL).Err(); err != nil {
					c.Logger().Warnf("cache: redis set failed for key=%s: %v", key, err)
				}
			}
			return nil
		}
	}
}
