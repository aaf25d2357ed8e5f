package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xseq/lib/infra"
)

type MetricsExporterType string

const (
	NoneExporter       MetricsExporterType = "none"
	ConsoleExporter    MetricsExporterType = "stdout"
	PrometheusExporter MetricsExporterType = "prometheus"
)

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case NoneExporter, ConsoleExporter, PrometheusExporter:
		return t, nil
	case "":
		return NoneExporter, nil
	default:
	}
	return NoneExporter, infra.NewErrorStack("unknown metrics exporter: " + typ)
}

// MetricsExporter is the installed global meter provider.
type MetricsExporter struct {
	typ      MetricsExporterType
	shutdown func(ctx context.Context) error
	handler  http.Handler
}

func (e *MetricsExporter) Type() MetricsExporterType {
	return e.typ
}

// Shutdown flushes and shuts the provider down.
func (e *MetricsExporter) Shutdown(ctx context.Context) error {
	return e.shutdown(ctx)
}

// Handler serves the scrape endpoint, nil unless the exporter is prometheus.
func (e *MetricsExporter) Handler() http.Handler {
	return e.handler
}

// InitMetricsExporter installs the global meter provider.
func InitMetricsExporter(typ MetricsExporterType, out io.Writer) (*MetricsExporter, error) {
	switch typ {
	case ConsoleExporter:
		opts := []stdoutmetric.Option{}
		if out != nil {
			opts = append(opts, stdoutmetric.WithWriter(out))
		}
		return newConsoleMetricsExporter(time.Minute, 5*time.Second, opts...)
	case PrometheusExporter:
		return newPrometheusMetricsExporter()
	case NoneExporter:
		return &MetricsExporter{
			typ:      NoneExporter,
			shutdown: func(ctx context.Context) error { return nil },
		}, nil
	default:
	}
	return nil, infra.NewErrorStack("unknown metrics exporter: " + string(typ))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (*MetricsExporter, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return &MetricsExporter{typ: ConsoleExporter, shutdown: mp.Shutdown}, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
// Each exporter owns its registry, a shut down reader is never scraped.
func newPrometheusMetricsExporter() (*MetricsExporter, error) {
	reg := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return &MetricsExporter{
		typ:      PrometheusExporter,
		shutdown: mp.Shutdown,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, nil
}
