package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"

	"github.com/rodbv/clean-node-api/internal/controller"
)

const (
	routeHealthz = "/healthz"
	routeMetrics = "/metrics"
	routeSignup  = "/api/v1/signup"

	healthCheckTimeout = 2 * time.Second
	maxBodyBytes       = 1 << 20
)

// Options tunes the router. Zero values select defaults.
type Options struct {
	// SignupLimit caps sign-ups per client address and window. Zero selects
	// the default and a negative value turns limiting off.
	SignupLimit  int
	SignupWindow time.Duration
	// Redis, when set, holds the sign-up windows so replicas share them.
	// The router does not close it.
	Redis *redis.Client
	DBHealth     func(context.Context) error
	// Registry receives the router's metrics and backs /metrics. Nil selects
	// the default Prometheus registry.
	Registry *prometheus.Registry
}

// Router wires HTTP endpoints to controllers.
type Router struct {
	mux      *mux.Router
	logger   *slog.Logger
	signup   controller.Controller
	limiter  RateLimiter
	dbHealth func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, signup controller.Controller, opts Options) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		mux:      mux.NewRouter(),
		logger:   logger,
		signup:   signup,
		limiter:  newSignupLimiter(opts, logger),
		dbHealth: opts.DBHealth,
	}
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		reg, gatherer = opts.Registry, opts.Registry
	}
	r.initMetrics(reg)
	r.register(gatherer)
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register(gatherer prometheus.Gatherer) {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { r.notFound(w) })
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { r.methodNotAllowed(w) })
	r.mux.NotFoundHandler = notFound
	r.mux.MethodNotAllowedHandler = methodNotAllowed

	r.mux.HandleFunc(routeHealthz, r.audit(routeHealthz, r.handleHealthz)).Methods(http.MethodGet)
	r.mux.Handle(routeMetrics, metricsHandler(gatherer)).Methods(http.MethodGet)

	apiV1 := r.mux.PathPrefix("/api/v1").Subrouter()
	apiV1.NotFoundHandler = notFound
	apiV1.MethodNotAllowedHandler = methodNotAllowed
	apiV1.HandleFunc("/signup", r.audit(routeSignup, r.withSignupRateLimit(r.handleSignup))).Methods(http.MethodPost)
}

func newSignupLimiter(opts Options, logger *slog.Logger) RateLimiter {
	limit, window := opts.SignupLimit, opts.SignupWindow
	if limit < 0 {
		return nil
	}
	if limit == 0 {
		limit = signupRateLimitDefault
	}
	if window <= 0 {
		window = signupRateWindowDefault
	}
	if opts.Redis != nil {
		return newRedisRateLimiter(opts.Redis, limit, window, logger)
	}
	return newMemoryRateLimiter(limit, window)
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	body, err := decodeObject(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp := r.signup.Handle(req.Context(), controller.HTTPRequest{Body: body})
	writeResponse(w, resp)
}

var errNotObject = errors.New("body is not a single JSON object")

// decodeObject reads exactly one JSON object. Trailing data is an error.
func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errNotObject
	}
	return obj, nil
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			r.logger.Warn("database health check failed", "error", err)
			status = "degraded"
			components["database"] = map[string]any{"status": "down"}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// audit logs one line per request and records request metrics under route.
func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)

		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
