package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xseq/lib/infra"
	"github.com/benz9527/xseq/lib/list"
	"github.com/benz9527/xseq/lib/xlog"
	"github.com/benz9527/xseq/observability"
)

type config struct {
	doubly      bool
	name        string
	logLevel    string
	logEncoder  string
	metrics     string
	metricsAddr string
	logOut      io.Writer
}

func parseConfig(args []string) (*config, error) {
	cfg := &config{logOut: os.Stderr}
	defaultLvl := os.Getenv("XLOG_LVL")
	if len(defaultLvl) == 0 {
		defaultLvl = xlog.LogLevelInfo.String()
	}
	fs := flag.NewFlagSet("xseq", flag.ContinueOnError)
	fs.BoolVar(&cfg.doubly, "doubly", false, "use the doubly linked chain")
	fs.StringVar(&cfg.name, "name", "xseq", "chain name in logs and metrics")
	fs.StringVar(&cfg.logLevel, "log-level", defaultLvl, "debug, info, warn or error")
	fs.StringVar(&cfg.logEncoder, "log-encoder", "json", "json or text")
	fs.StringVar(&cfg.metrics, "metrics", "none", "none, stdout or prometheus")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "listen address of the prometheus scrape endpoint")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newXLogger(cfg *config) xlog.XLogger {
	enc := xlog.JSON
	if cfg.logEncoder == "text" {
		enc = xlog.PlainText
	}
	return xlog.NewXLogger(
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerOutput(zapcore.AddSync(cfg.logOut)),
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(cfg.logLevel)),
	)
}

type metricsReady struct{}

func newMetrics(lc fx.Lifecycle, cfg *config, logger xlog.XLogger) (metricsReady, error) {
	typ, err := observability.ParseMetricsExporterType(cfg.metrics)
	if err != nil {
		return metricsReady{}, err
	}
	if (typ == observability.PrometheusExporter) != (len(cfg.metricsAddr) > 0) {
		return metricsReady{}, infra.NewErrorStack("the prometheus exporter and -metrics-addr go together")
	}
	exporter, err := observability.InitMetricsExporter(typ, os.Stderr)
	if err != nil {
		return metricsReady{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("metrics exporter shutdown", zap.String("exporter", string(typ)))
			return exporter.Shutdown(ctx)
		},
	})
	if h := exporter.Handler(); h != nil {
		srv := observability.NewMetricsServer(cfg.metricsAddr, h)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				addr, err := srv.Start(func(err error) {
					logger.ErrorStack(err, "serve metrics")
				})
				if err != nil {
					return err
				}
				logger.Info("metrics served", zap.String("addr", addr.String()), zap.String("path", observability.MetricsPath))
				return nil
			},
			OnStop: srv.Stop,
		})
	}
	return metricsReady{}, nil
}

// The metrics exporter must be installed before the chain creates its instruments.
func newChain(cfg *config, logger xlog.XLogger, _ metricsReady) list.Chain[string] {
	opts := []list.ChainOption{
		list.WithChainName(cfg.name),
		list.WithChainLogger(logger),
	}
	if cfg.metrics != string(observability.NoneExporter) {
		opts = append(opts, list.WithChainStats())
	}
	if cfg.doubly {
		return list.NewDoublyLinkedChain[string](nil, opts...)
	}
	return list.NewSinglyLinkedChain[string](nil, opts...)
}

func newApp(cfg *config, out io.Writer, target **interpreter) *fx.App {
	return fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			newXLogger,
			newMetrics,
			newChain,
			func(chain list.Chain[string], logger xlog.XLogger) *interpreter {
				return newInterpreter(chain, logger, out)
			},
		),
		fx.Populate(target),
	)
}

// Command results go to out, the log entries to logOut.
func run(args []string, in io.Reader, out, logOut io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		return 2
	}
	cfg.logOut = logOut

	var it *interpreter
	app := newApp(cfg, out, &it)
	if err = app.Err(); err != nil {
		_, _ = io.WriteString(out, "error: "+err.Error()+"\n")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = app.Start(ctx); err != nil {
		_, _ = io.WriteString(out, "error: "+err.Error()+"\n")
		return 1
	}

	code := 0
	if err = it.Run(in); err != nil {
		it.logger.ErrorStack(err, "read commands")
		code = 1
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err = app.Stop(stopCtx); err != nil {
		code = 1
	}
	_ = it.logger.Sync()
	return code
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
