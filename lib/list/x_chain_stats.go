package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ChainStatsName = "xseq/chain"
)

type chainOp string

const (
	opGet    chainOp = "get"
	opSet    chainOp = "set"
	opDelete chainOp = "delete"
	opInsert chainOp = "insert"
	opAppend chainOp = "append"
	opNodeAt chainOp = "node_at"
	opClear  chainOp = "clear"
)

type chainStats struct {
	length        metric.Int64UpDownCounter
	ops           metric.Int64Counter
	rejected      metric.Int64Counter
	traverseSteps metric.Int64Histogram
}

func (stats *chainStats) RecordLen(delta int64) {
	if stats == nil {
		return
	}
	stats.length.Add(context.Background(), delta)
}

func (stats *chainStats) IncreaseOpCount(op chainOp) {
	if stats == nil {
		return
	}
	stats.ops.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("op", string(op)),
	))
}

func (stats *chainStats) IncreaseRejectedCount(op chainOp, err error) {
	if stats == nil {
		return
	}
	reason := "unknown"
	switch {
	case errors.Is(err, ErrChainIndexOutOfRange):
		reason = "range"
	case errors.Is(err, ErrChainIndexType), errors.Is(err, ErrChainNodeType):
		reason = "type"
	default:
	}
	stats.rejected.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("op", string(op)),
		attribute.String("reason", reason),
	))
}

func (stats *chainStats) RecordTraverseSteps(steps int64) {
	if stats == nil {
		return
	}
	stats.traverseSteps.Record(context.Background(), steps)
}

func newChainStats(name string) *chainStats {
	meterName := fmt.Sprintf("%s/%s", ChainStatsName, name)
	meter := otel.Meter(meterName)
	return &chainStats{
		length: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xseq.chain.len",
			metric.WithDescription("The number of nodes in the chain."),
		)),
		ops: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xseq.chain.ops",
			metric.WithDescription("The number of accepted chain operations."),
		)),
		rejected: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xseq.chain.rejected",
			metric.WithDescription("The number of chain operations rejected by the validation."),
		)),
		traverseSteps: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xseq.chain.traverse.steps",
			metric.WithDescription("The number of hops of an index traversal from the head."),
			metric.WithUnit("{hop}"),
		)),
	}
}
