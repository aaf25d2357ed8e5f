package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/benz9527/xseq/lib/infra"
)

const MetricsPath = "/metrics"

// MetricsServer exposes a scrape handler for the process lifetime.
type MetricsServer struct {
	srv *http.Server
}

func NewMetricsServer(addr string, h http.Handler) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, h)
	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds synchronously so that a bad address fails the caller,
// serving errors after that are passed to onErr.
func (s *MetricsServer) Start(onErr func(err error)) (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && onErr != nil {
			onErr(infra.WrapErrorStack(err))
		}
	}()
	return ln.Addr(), nil
}

func (s *MetricsServer) Stop(ctx context.Context) error {
	return infra.WrapErrorStack(s.srv.Shutdown(ctx))
}
