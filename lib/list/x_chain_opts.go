package list

import (
	"strings"

	"github.com/benz9527/xseq/lib/infra"
	"github.com/benz9527/xseq/lib/xlog"
)

const defaultChainArenaCapacity = 16

type chainOption struct {
	name         string
	logger       xlog.XLogger
	arenaCap     int
	statsEnabled bool
}

type ChainOption func(opt *chainOption) error

// WithChainName names the chain in the logs and the meter.
func WithChainName(name string) ChainOption {
	return func(opt *chainOption) error {
		if len(strings.TrimSpace(name)) == 0 {
			return infra.NewErrorStack("[x-chain] empty chain name")
		}
		opt.name = name
		return nil
	}
}

// WithChainLogger logs the structural mutations at debug level
// and the rejected calls at warn level.
func WithChainLogger(logger xlog.XLogger) ChainOption {
	return func(opt *chainOption) error {
		if logger == nil {
			return infra.NewErrorStack("[x-chain] nil logger")
		}
		opt.logger = logger
		return nil
	}
}

// WithChainStats records the chain metrics through the global otel meter provider.
func WithChainStats() ChainOption {
	return func(opt *chainOption) error {
		opt.statsEnabled = true
		return nil
	}
}

func WithChainArenaCapacity(capacity int) ChainOption {
	return func(opt *chainOption) error {
		if capacity < 0 {
			return infra.NewErrorStack("[x-chain] negative arena capacity")
		}
		opt.arenaCap = capacity
		return nil
	}
}
