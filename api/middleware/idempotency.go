package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/mealprep-backend/api/responses"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

// Replay windows for guarded writes. Money-moving writes keep their record
// for a week so a retried vacuum order or ledger entry is never booked twice.
const (
	DailyReplay  = 24 * time.Hour
	WeeklyReplay = 7 * 24 * time.Hour
)

const (
	idempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

// IdempotencyStore is the redis surface the guard needs.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Idempotency replays the first response recorded for a client key. The first
// request claims the key with a pending record; retries that arrive while it
// runs are told the key is busy.
type Idempotency struct {
	store IdempotencyStore
	logg  *logger.Logger
}

// NewIdempotency returns a guard factory. A nil store turns every guard into
// a pass-through.
func NewIdempotency(store IdempotencyStore, logg *logger.Logger) *Idempotency {
	return &Idempotency{store: store, logg: logg}
}

type replayRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Guard requires an Idempotency-Key on the wrapped route and keeps its
// outcome for ttl.
func (g *Idempotency) Guard(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if g == nil || g.store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			switch {
			case clientKey == "":
				g.fail(ctx, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case len(clientKey) > maxIdempotencyKeyLen:
				g.fail(ctx, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				g.fail(ctx, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(body)
			key := g.store.IdempotencyKey(requestScope(r), clientKey)
			claim, _ := json.Marshal(replayRecord{Pending: true, RequestHash: hash})

			claimed, err := g.store.SetNX(ctx, key, string(claim), ttl)
			if err != nil {
				g.fail(ctx, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				g.replay(ctx, w, key, hash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			// Server faults are not remembered so the client can retry.
			if capture.code() >= http.StatusInternalServerError {
				if err := g.store.Del(context.WithoutCancel(ctx), key); err != nil {
					g.logError(ctx, "release idempotency key", err)
				}
				return
			}
			done, _ := json.Marshal(replayRecord{
				RequestHash: hash,
				Status:      capture.code(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err := g.store.Set(context.WithoutCancel(ctx), key, string(done), ttl); err != nil {
				g.logError(ctx, "store idempotency record", err)
			}
		})
	}
}

func (g *Idempotency) replay(ctx context.Context, w http.ResponseWriter, key, hash string) {
	raw, err := g.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// expired or released between SetNX and Get
		g.fail(ctx, w, pkgerrors.New(pkgerrors.CodeBusy, "request with this Idempotency-Key is being retried, try again"))
		return
	}
	if err != nil {
		g.fail(ctx, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}
	var rec replayRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		g.fail(ctx, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if rec.RequestHash != hash {
		g.fail(ctx, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reused with a different request body"))
		return
	}
	if rec.Pending {
		g.fail(ctx, w, pkgerrors.New(pkgerrors.CodeBusy, "request with this Idempotency-Key is still in progress"))
		return
	}
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}

func (g *Idempotency) fail(ctx context.Context, w http.ResponseWriter, err error) {
	responses.WriteError(ctx, g.logg, w, err)
}

func (g *Idempotency) logError(ctx context.Context, msg string, err error) {
	if g.logg != nil {
		g.logg.Error(ctx, msg, err)
	}
}

// requestScope keys records by method and concrete path so the same client
// key may be reused across different subscribers.
func requestScope(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) code() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
