// Package health answers load balancer probes and tracks the shutdown state
// of the HTTP server.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/shared/constant"
	"appointer/transport/http/response"
)

const checkTimeout = 2 * time.Second

type State int32

const (
	StateReady State = iota + 1
	StateInGracePeriod
	StateInCleanupPeriod
)

// Probe is shared between the server, which moves it through the shutdown
// states, and the health endpoint, which reports it.
type Probe struct {
	state atomic.Int32
}

func NewProbe() *Probe {
	p := &Probe{}
	p.Set(StateReady)

	return p
}

func (p *Probe) Set(s State) {
	p.state.Store(int32(s))
}

func (p *Probe) State() State {
	return State(p.state.Load())
}

type check func(ctx context.Context) error

type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type Handler struct {
	probe  *Probe
	checks map[string]check
	otel   otel.Otel
}

func New(probe *Probe, db *postgres.Connection, rdb goRedis.UniversalClient, otel otel.Otel) Handler {
	return Handler{
		probe: probe,
		checks: map[string]check{
			"postgres": db.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		otel: otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/health", handler.Health)
}

// Health reports 503 once shutdown has started or when a backing store is
// unreachable.
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Health")
	defer scope.End()

	if handler.probe.State() != StateReady {
		response.WithPreparingShutdown(w)

		return
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	res := Status{Status: "ok", Checks: make(map[string]string, len(handler.checks))}

	for name, fn := range handler.checks {
		if err := fn(ctx); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("dependency", name).Msg("health check failed")

			res.Status = "unhealthy"
			res.Checks[name] = "unreachable"

			continue
		}

		res.Checks[name] = "ok"
	}

	if res.Status != "ok" {
		response.WithJSON(w, http.StatusServiceUnavailable, res)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
