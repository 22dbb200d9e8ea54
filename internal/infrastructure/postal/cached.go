package postal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/etiqueta/backend/internal/infrastructure/cache"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "cep:"

// CachedLookup memoizes directory answers, including "not found", for a TTL.
// Cache failures are logged and the lookup falls through to the directory.
type CachedLookup struct {
	next    Lookup
	cache   cache.LookupCache
	ttl     time.Duration
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// NewCachedLookup wraps next with c. metrics may be nil.
func NewCachedLookup(next Lookup, c cache.LookupCache, ttl time.Duration, metrics *telemetry.Metrics, logger *zap.Logger) *CachedLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookup{next: next, cache: c, ttl: ttl, metrics: metrics, logger: logger}
}

// Lookup serves from cache when possible
func (l *CachedLookup) Lookup(ctx context.Context, code string) (*Address, error) {
	digits := NormalizePostalCode(code)
	if !IsValidPostalCode(digits) {
		return nil, ErrInvalidCode
	}
	key := cacheKeyPrefix + digits

	ctx, span := telemetry.StartSpan(ctx, "postal.lookup",
		telemetry.WithAttribute(telemetry.SpanAttrPostalCode, digits))
	defer span.End()

	if raw, ok, err := l.cache.Get(ctx, key); err != nil {
		l.logger.Warn("postal cache read failed", zap.String("cep", digits), zap.Error(err))
	} else if ok {
		var p Payload
		if err := json.Unmarshal(raw, &p); err == nil {
			l.metrics.RecordPostalLookup(ctx, telemetry.OutcomeCacheHit)
			telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
			if p.Erro {
				return nil, ErrNotFound
			}
			return p.Address(), nil
		}
		l.logger.Warn("discarding corrupt postal cache entry", zap.String("cep", digits))
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)
	addr, err := l.next.Lookup(ctx, digits)
	switch {
	case err == nil:
		l.store(ctx, key, PayloadFor(addr))
	case errors.Is(err, ErrNotFound):
		l.store(ctx, key, NotFoundPayload)
	default:
		telemetry.RecordError(span, err)
	}
	return addr, err
}

func (l *CachedLookup) store(ctx context.Context, key string, p Payload) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := l.cache.Set(ctx, key, raw, l.ttl); err != nil {
		l.logger.Warn("postal cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Ensure CachedLookup implements Lookup
var _ Lookup = (*CachedLookup)(nil)
