package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	"appointer/transport/http/response"
)

const (
	cacheKeyRateLimit = "limiter"
)

// RateLimit counts requests per client and user agent in a fixed redis
// window. The limiter fails open when redis is unreachable.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	settings := a.config.App.RateLimiter
	if !settings.Enable {
		return func(next http.Handler) http.Handler { return next }
	}

	window := time.Duration(settings.WindowSeconds) * time.Second

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(r), a.getUA(r))

			count, ok := a.hit(r.Context(), key, window)
			if !ok {
				next.ServeHTTP(w, r)

				return
			}

			if count > settings.MaxRequests {
				response.WithRequestLimitExceeded(w)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(settings.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, settings.MaxRequests-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(settings.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

type windowCounter struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// hit counts one request in the caller's current window. The key expires
// when the window closes, so later hits never extend it.
func (a *appMiddleware) hit(ctx context.Context, key string, window time.Duration) (int, bool) {
	var counter windowCounter

	err := a.cache.Get(ctx, key, &counter)
	if err != nil && !errors.Is(err, cache.Nil) {
		log.Warn().Err(err).Msg("rate limiter unavailable")

		return 0, false
	}

	now := time.Now()
	if errors.Is(err, cache.Nil) || !now.Before(counter.ResetAt) {
		counter = windowCounter{ResetAt: now.Add(window)}
	}

	counter.Count++

	if err := a.cache.Save(ctx, key, counter, counter.ResetAt.Sub(now)); err != nil {
		log.Warn().Err(err).Msg("rate limiter unavailable")

		return 0, false
	}

	return counter.Count, true
}

func (a *appMiddleware) getUA(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != "" {
		return ua
	}

	return "unknown"
}

func (a *appMiddleware) getClientIP(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	return r.RemoteAddr
}
