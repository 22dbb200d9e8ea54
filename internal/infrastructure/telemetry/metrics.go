package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterName is the instrumentation scope of the service metrics
const MeterName = "github.com/etiqueta/backend"

// MetricsConfig holds metrics configuration.
// Prometheus serves a scrape endpoint; OTLP pushes to the collector.
// With both off the provider is a no-op.
type MetricsConfig struct {
	ServiceName string
	Namespace   string

	PrometheusEnabled bool
	WithRuntime       bool // Go runtime and process collectors on the scrape registry

	OTLPEnabled       bool
	CollectorEndpoint string
	Insecure          bool
	ExportInterval    time.Duration // Default: 60s
}

// MeterOption customizes a MeterProvider
type MeterOption func(*meterOptions)

type meterOptions struct {
	readers []sdkmetric.Reader
}

// WithMetricReader attaches an extra reader, e.g. a ManualReader in tests
func WithMetricReader(r sdkmetric.Reader) MeterOption {
	return func(o *meterOptions) {
		o.readers = append(o.readers, r)
	}
}

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates the SDK provider with every configured reader
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger, opts ...MeterOption) (*MeterProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &meterOptions{}
	for _, opt := range opts {
		opt(o)
	}

	mp := &MeterProvider{logger: logger, config: cfg}
	readers := o.readers

	if cfg.PrometheusEnabled {
		mp.registry = prometheus.NewRegistry()
		if cfg.WithRuntime {
			mp.registry.MustRegister(collectors.NewGoCollector())
			mp.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		exporter, err := otelprom.New(
			otelprom.WithRegisterer(mp.registry),
			otelprom.WithNamespace(cfg.Namespace),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, exporter)
	}

	if cfg.OTLPEnabled {
		exportInterval := cfg.ExportInterval
		if exportInterval == 0 {
			exportInterval = 60 * time.Second
		}
		exporterOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval)))
	}

	if len(readers) == 0 {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	providerOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		providerOpts = append(providerOpts, sdkmetric.WithReader(r))
	}
	mp.provider = sdkmetric.NewMeterProvider(providerOpts...)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.Bool("prometheus", cfg.PrometheusEnabled),
		zap.Bool("otlp", cfg.OTLPEnabled),
		zap.String("service_name", cfg.ServiceName),
	)
	return mp, nil
}

// Meter returns a named meter, a no-op one when metrics are disabled
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp == nil || mp.provider == nil {
		return noop.NewMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether any reader is attached
func (mp *MeterProvider) IsEnabled() bool {
	return mp != nil && mp.provider != nil
}

// Handler serves the scrape registry, or nil when Prometheus is off
func (mp *MeterProvider) Handler() http.Handler {
	if mp == nil || mp.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(mp.registry, promhttp.HandlerOpts{Registry: mp.registry})
}

// ForceFlush exports pending OTLP data
func (mp *MeterProvider) ForceFlush(ctx context.Context) error {
	if !mp.IsEnabled() {
		return nil
	}
	return mp.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops every reader
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if !mp.IsEnabled() {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("OpenTelemetry MeterProvider shutdown complete")
	return nil
}

// Counter records monotonically increasing values
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new Counter metric
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram records value distributions
type Histogram struct {
	histogram metric.Float64Histogram
}

// HistogramOpts provides options for creating a histogram
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

// NewHistogram creates a new Histogram metric
func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	histogramOpts := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if len(opts.Boundaries) > 0 {
		histogramOpts = append(histogramOpts, metric.WithExplicitBucketBoundaries(opts.Boundaries...))
	}
	h, err := meter.Float64Histogram(opts.Name, histogramOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", opts.Name, err)
	}
	return &Histogram{histogram: h}, nil
}

// Record records a value
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// Gauge records point-in-time values
type Gauge struct {
	gauge metric.Int64Gauge
}

// NewGauge creates a new Gauge metric
func NewGauge(meter metric.Meter, name, description, unit string) (*Gauge, error) {
	g, err := meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", name, err)
	}
	return &Gauge{gauge: g}, nil
}

// Record records the current value
func (g *Gauge) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	g.gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Metric attribute keys
var (
	AttrOutcome        = attribute.Key("outcome")
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrDBName         = attribute.Key("db.name")
	AttrDBState        = attribute.Key("db.pool.state")
)

// Histogram bucket boundaries
var (
	HTTPDurationBuckets   = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	RenderDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	PDFSizeBuckets        = []float64{2048, 4096, 8192, 16384, 32768, 65536, 131072, 262144}
)

// Outcome attribute values
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeCacheHit    = "cache_hit"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds the service instruments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	meter metric.Meter

	labelsRendered      *Counter
	labelRenderDuration *Histogram
	labelBytes          *Histogram
	archiveFailures     *Counter
	postalLookups       *Counter
	postalBreakerState  *Gauge
	employeeLookups     *Counter
	httpRequests        *Counter
	httpRequestDuration *Histogram
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	var err error

	if m.labelsRendered, err = NewCounter(meter, "label_render_total",
		"Label render attempts by outcome", "{label}"); err != nil {
		return nil, err
	}
	if m.labelRenderDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "label_render_duration_seconds",
		Description: "Time spent rendering one label PDF",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.labelBytes, err = NewHistogram(meter, HistogramOpts{
		Name:        "label_pdf_size_bytes",
		Description: "Size of rendered label PDFs",
		Unit:        "By",
		Boundaries:  PDFSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.archiveFailures, err = NewCounter(meter, "label_archive_failure_total",
		"Rendered labels that could not be archived", "{label}"); err != nil {
		return nil, err
	}
	if m.postalLookups, err = NewCounter(meter, "postal_lookup_total",
		"Postal code lookups by outcome", "{lookup}"); err != nil {
		return nil, err
	}
	if m.postalBreakerState, err = NewGauge(meter, "postal_breaker_state",
		"Postal directory circuit breaker state (0 closed, 1 half-open, 2 open)", "1"); err != nil {
		return nil, err
	}
	if m.employeeLookups, err = NewCounter(meter, "employee_lookup_total",
		"Employee code lookups by outcome", "{lookup}"); err != nil {
		return nil, err
	}
	if m.httpRequests, err = NewCounter(meter, "http_server_request_total",
		"Total number of HTTP requests", "{request}"); err != nil {
		return nil, err
	}
	if m.httpRequestDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterDBStats observes the connection pool of db on every collection
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	if m == nil {
		return nil
	}
	connections, err := m.meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create gauge db_pool_connections: %w", err)
	}
	maxOpen, err := m.meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create gauge db_pool_connections_max: %w", err)
	}
	waits, err := m.meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return fmt.Errorf("failed to create counter db_pool_wait_total: %w", err)
	}

	name := AttrDBName.String(dbName)
	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(name, AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(name, AttrDBState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections), metric.WithAttributes(name))
		o.ObserveInt64(waits, stats.WaitCount, metric.WithAttributes(name))
		return nil
	}, connections, maxOpen, waits)
	return err
}

// RecordLabelRender records one render attempt
func (m *Metrics) RecordLabelRender(ctx context.Context, outcome string, d time.Duration, size int) {
	if m == nil {
		return
	}
	m.labelsRendered.Inc(ctx, AttrOutcome.String(outcome))
	if outcome == OutcomeSuccess {
		m.labelRenderDuration.RecordDuration(ctx, d)
		m.labelBytes.Record(ctx, float64(size))
	}
}

// RecordArchiveFailure counts a label that was served but not archived
func (m *Metrics) RecordArchiveFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.archiveFailures.Inc(ctx)
}

// RecordPostalLookup records one postal code lookup
func (m *Metrics) RecordPostalLookup(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.postalLookups.Inc(ctx, AttrOutcome.String(outcome))
}

// SetPostalBreakerState publishes the breaker state as a number
func (m *Metrics) SetPostalBreakerState(ctx context.Context, state int) {
	if m == nil {
		return
	}
	m.postalBreakerState.Record(ctx, int64(state))
}

// RecordEmployeeLookup records one employee lookup
func (m *Metrics) RecordEmployeeLookup(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.employeeLookups.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordHTTPRequest records a served request; route should be the route template
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.Inc(ctx,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.String(strconv.Itoa(status)))
	m.httpRequestDuration.RecordDuration(ctx, d,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route))
}
