package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/cache"
)

const (
	idempotencyKeyHeader   = "Idempotency-Key"
	idempotentReplayHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLen   = 128
)

type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key string) (*cache.StoredResponse, bool, error)
	Complete(ctx context.Context, scope, key string, resp cache.StoredResponse) error
	Abort(ctx context.Context, scope, key string) error
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a caller repeats a request
// with the same Idempotency-Key. Keys are scoped to the caller and route.
// A nil store disables replay.
func Idempotency(store IdempotencyStore, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyKeyHeader)
		if store == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			Abort(c, http.StatusBadRequest, "validation_failed")
			return
		}

		caller := "anonymous"
		if user, ok := CurrentUser(c); ok {
			caller = user.ID
		}
		scope := caller + ":" + c.Request.Method + ":" + c.FullPath()
		ctx := c.Request.Context()

		stored, started, err := store.Begin(ctx, scope, key)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency lookup failed")
			c.Next()
			return
		}
		if stored != nil {
			c.Header(idempotentReplayHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}
		if !started {
			Abort(c, http.StatusConflict, "request_in_progress")
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= 200 && status < 500 {
			resp := cache.StoredResponse{
				Status:      status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			}
			if err := store.Complete(context.WithoutCancel(ctx), scope, key, resp); err != nil {
				log.Warn().Err(err).Msg("store idempotent response failed")
			}
			return
		}
		if err := store.Abort(context.WithoutCancel(ctx), scope, key); err != nil {
			log.Warn().Err(err).Msg("release idempotency key failed")
		}
	}
}
