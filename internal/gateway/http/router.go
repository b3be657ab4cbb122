// Package http wires the gateway's HTTP surface: the query endpoint, health
// probes and metrics.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/upbanklab/upgate/internal/gateway/metrics"
	"github.com/upbanklab/upgate/internal/gateway/resolver"
	"github.com/upbanklab/upgate/internal/gateway/store"
	"github.com/upbanklab/upgate/pkg/httpx"
	"github.com/upbanklab/upgate/pkg/jwtx"
	"github.com/upbanklab/upgate/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	metrics   *metrics.Collector
	Resolvers *resolver.Resolvers
}

// NewRouter builds a router with the default middleware chain. metrics may
// be nil when instrumentation is disabled.
func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      collector,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if collector != nil {
		r.middlewares = append(r.middlewares, collector.HTTPMiddleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerGraphQL()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerGraphQL() {
	h := &GraphQLHandler{Resolvers: r.Resolvers, Logger: r.logger}

	// POST /graphql - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /graphql",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", promhttp.Handler())
	}
}
