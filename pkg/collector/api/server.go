// Package api serves the collector over HTTP: the REST binding of the sync
// protocol, sensor browsing endpoints, a websocket live feed and Prometheus
// metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/carverauto/sensorsync/pkg/collector"
	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/db"
	httpx "github.com/carverauto/sensorsync/pkg/http"
	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"
)

const (
	maxBodyBytes      = 4 * 1024 * 1024 // 4MB
	defaultListLimit  = 100
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

func WithLogger(logger *slog.Logger) Option {
	return func(s *APIServer) {
		s.logger = logger
	}
}

// WithGatherer selects the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *APIServer) {
		s.gatherer = g
	}
}

// NewAPIServer builds the HTTP binding for collector. Listen address,
// connection cap and feed interval come from cfg.
func NewAPIServer(collectorSvc CollectorService, cfg *config.CollectorConfig, opts ...Option) *APIServer {
	s := &APIServer{
		collector:    collectorSvc,
		router:       mux.NewRouter(),
		gatherer:     prometheus.DefaultGatherer,
		logger:       slog.Default(),
		addr:         cfg.ListenAddr,
		maxConns:     cfg.MaxConnections,
		feedInterval: time.Duration(cfg.FeedInterval),
		feedLimit:    defaultListLimit,
		done:         make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	if s.maxConns <= 0 {
		s.maxConns = config.DefaultMaxConnections
	}

	if s.feedInterval <= 0 {
		s.feedInterval = config.DefaultFeedInterval
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)
	s.router.Use(httpx.LoggingMiddleware(s.logger))

	// Sync protocol
	s.router.HandleFunc("/sensordata", s.submitReadings).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/receivedAverages", s.acknowledgeAggregates).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/createSensor", s.createSensor).Methods(http.MethodPost, http.MethodOptions)

	// Browsing
	s.router.HandleFunc("/sensors", s.listSensors).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sensors/{id}", s.getSensor).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sensors/{id}/readings", s.getSensorReadings).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sensors/{id}/aggregates", s.getSensorAggregates).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.liveFeed).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns the router, for embedding or tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Stop is called.
func (s *APIServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	return s.Serve(ctx, lis)
}

// Serve accepts at most the configured number of concurrent connections on
// lis. Canceling ctx ends the live feeds but not the server; use Stop.
func (s *APIServer) Serve(ctx context.Context, lis net.Listener) error {
	s.mu.Lock()

	if s.srv != nil {
		s.mu.Unlock()

		_ = lis.Close()

		return errServerRunning
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.srv = srv

	s.mu.Unlock()

	s.logger.Info("Starting HTTP server", "addr", lis.Addr().String(), "max_connections", s.maxConns)

	err := srv.Serve(netutil.LimitListener(lis, s.maxConns))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Stop closes the live feeds and shuts the server down gracefully.
func (s *APIServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	return srv.Shutdown(ctx)
}

func (s *APIServer) submitReadings(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitReadingsRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.collector.Sync(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) acknowledgeAggregates(w http.ResponseWriter, r *http.Request) {
	var req models.AckRequest
	if !s.decode(w, r, &req) {
		return
	}

	if _, err := s.collector.Acknowledge(r.Context(), req.IDs); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.AckResponse{OK: true})
}

func (s *APIServer) createSensor(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterSensorRequest
	if !s.decode(w, r, &req) {
		return
	}

	sensor, err := s.collector.CreateSensor(r.Context(), req.Type, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sensor.ToMessage())
}

func (s *APIServer) listSensors(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sensors, err := s.collector.ListSensors(r.Context(), skip, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]models.SensorMessage, 0, len(sensors))
	for i := range sensors {
		out = append(out, sensors[i].ToMessage())
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *APIServer) getSensor(w http.ResponseWriter, r *http.Request) {
	sensor, err := s.collector.GetSensor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sensor.ToMessage())
}

func (s *APIServer) getSensorReadings(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	readings, err := s.collector.RecentReadings(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]models.ReadingMessage, 0, len(readings))
	for i := range readings {
		out = append(out, readings[i].ToMessage())
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *APIServer) getSensorAggregates(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	aggs, err := s.collector.RecentAggregates(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]models.AggregateMessage, 0, len(aggs))
	for i := range aggs {
		out = append(out, aggs[i].ToMessage())
	}

	s.writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON body into v. On failure it writes a 400 and returns false.
func (s *APIServer) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})

		return false
	}

	return true
}

func (s *APIServer) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error encoding response", "error", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}

	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

// statusCode maps collector errors onto HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, collector.ErrMalformedBatch),
		errors.Is(err, collector.ErrInvalidSensor),
		errors.Is(err, errInvalidQuery),
		errors.Is(err, errMissingSensorID):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidQuery, name, raw)
	}

	return v, nil
}
