package list

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xseq/lib/xlog"
)

func findChainMetric(t *testing.T, rm *metricdata.ResourceMetrics, scope, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != scope {
			continue
		}
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	require.Failf(t, "metric not found", "%s in %s", name, scope)
	return metricdata.Metrics{}
}

func TestChain_Stats(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(ctx)
	}()

	c := NewDoublyLinkedChain[int]([]int{1, 2, 3}, WithChainName("stats"), WithChainStats())
	require.NoError(t, c.Insert(1, 9))
	require.NoError(t, c.Delete(0))
	_, err := c.Get(10)
	require.ErrorIs(t, err, ErrChainIndexOutOfRange)
	_, err = c.Get(2)
	require.NoError(t, err)

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	scope := ChainStatsName + "/stats"

	length := findChainMetric(t, &rm, scope, "xseq.chain.len")
	lengthSum, ok := length.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, lengthSum.DataPoints, 1)
	require.Equal(t, c.Len(), lengthSum.DataPoints[0].Value)

	ops := findChainMetric(t, &rm, scope, "xseq.chain.ops")
	opsSum, ok := ops.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	opCounts := map[string]int64{}
	for _, dp := range opsSum.DataPoints {
		v, ok := dp.Attributes.Value("op")
		require.True(t, ok)
		opCounts[v.AsString()] = dp.Value
	}
	require.Equal(t, int64(3), opCounts[string(opAppend)])
	require.Equal(t, int64(1), opCounts[string(opInsert)])
	require.Equal(t, int64(1), opCounts[string(opDelete)])
	require.Equal(t, int64(1), opCounts[string(opGet)])

	rejected := findChainMetric(t, &rm, scope, "xseq.chain.rejected")
	rejectedSum, ok := rejected.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejectedSum.DataPoints, 1)
	reason, ok := rejectedSum.DataPoints[0].Attributes.Value("reason")
	require.True(t, ok)
	require.Equal(t, "range", reason.AsString())

	steps := findChainMetric(t, &rm, scope, "xseq.chain.traverse.steps")
	hist, ok := steps.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	// insert walks to the predecessor, doubly delete and get walk to the node.
	require.Equal(t, uint64(3), hist.DataPoints[0].Count)
}

func TestChain_Logger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerOutput(zapcore.AddSync(buf)),
		xlog.WithXLoggerEncoder(xlog.JSON),
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
	)
	c := NewSinglyLinkedChain[string]([]string{"a"}, WithChainName("logged"), WithChainLogger(logger))
	require.NoError(t, c.Insert(0, "b"))
	require.ErrorIs(t, c.Set(5, "c"), ErrChainIndexOutOfRange)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.Equal(t, "logged", entry["chain"])
		entries = append(entries, entry)
	}
	require.Equal(t, "chain append", entries[0]["msg"])
	require.Equal(t, "DEBUG", entries[0]["lvl"])
	require.Equal(t, "chain insert", entries[1]["msg"])
	require.Equal(t, float64(0), entries[1]["index"])
	require.Equal(t, float64(2), entries[1]["len"])
	require.Equal(t, "chain operation rejected", entries[2]["msg"])
	require.Equal(t, "WARN", entries[2]["lvl"])
	require.Equal(t, "set", entries[2]["op"])
	require.Contains(t, entries[2]["error"], ErrChainIndexOutOfRange.Error())
	require.NotEmpty(t, entries[2]["errorStack"])
}

func TestChain_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewSinglyLinkedChain[int](nil, WithChainName("  "))
	})
	require.Panics(t, func() {
		NewSinglyLinkedChain[int](nil, WithChainLogger(nil))
	})
	require.Panics(t, func() {
		NewDoublyLinkedChain[int](nil, WithChainArenaCapacity(-1))
	})
	c := NewDoublyLinkedChain[int]([]int{1}, WithChainArenaCapacity(128))
	require.Equal(t, int64(1), c.Len())
}
