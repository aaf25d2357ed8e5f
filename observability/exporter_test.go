package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func TestParseMetricsExporterType(t *testing.T) {
	testcases := []struct {
		in      string
		want    MetricsExporterType
		wantErr bool
	}{
		{"", NoneExporter, false},
		{"none", NoneExporter, false},
		{" STDOUT ", ConsoleExporter, false},
		{"prometheus", PrometheusExporter, false},
		{"statsd", NoneExporter, true},
	}
	for _, tc := range testcases {
		typ, err := ParseMetricsExporterType(tc.in)
		if tc.wantErr {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.want, typ)
	}
}

func TestInitMetricsExporter_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	exporter, err := InitMetricsExporter(ConsoleExporter, buf)
	require.NoError(t, err)
	require.Equal(t, ConsoleExporter, exporter.Type())
	require.Nil(t, exporter.Handler())

	counter, err := otel.Meter("xseq/test").Int64Counter("xseq.test.count", metric.WithDescription("test"))
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Shutdown flushes the periodic reader.
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.Contains(t, buf.String(), "xseq.test.count")
}

func TestInitMetricsExporter_Others(t *testing.T) {
	exporter, err := InitMetricsExporter(NoneExporter, nil)
	require.NoError(t, err)
	require.Nil(t, exporter.Handler())
	require.NoError(t, exporter.Shutdown(context.Background()))

	_, err = InitMetricsExporter(MetricsExporterType("statsd"), nil)
	require.Error(t, err)
}

func TestInitMetricsExporter_PrometheusScrape(t *testing.T) {
	exporter, err := InitMetricsExporter(PrometheusExporter, nil)
	require.NoError(t, err)
	require.NotNil(t, exporter.Handler())

	counter, err := otel.Meter("xseq/test").Int64Counter("xseq.test.scraped", metric.WithDescription("test"))
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	srv := NewMetricsServer("127.0.0.1:0", exporter.Handler())
	addr, err := srv.Start(func(err error) {
		t.Errorf("serve metrics: %v", err)
	})
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + MetricsPath)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "xseq_test_scraped")

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestMetricsServer_BadAddress(t *testing.T) {
	srv := NewMetricsServer("256.0.0.1:-1", http.NotFoundHandler())
	_, err := srv.Start(nil)
	require.Error(t, err)
}
