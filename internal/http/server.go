package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type Server struct {
	// Engine is nil for servers not backed by the API router.
	Engine *gin.Engine
	srv    *nethttp.Server
}

func NewServer(addr string, cfg RouterConfig) *Server {
	engine := NewRouter(cfg)
	s := newServer(addr, engine)
	s.Engine = engine
	return s
}

// NewMetricsServer serves only /metrics, for a listener kept off the public
// address.
func NewMetricsServer(addr string, metrics nethttp.Handler) *Server {
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", metrics)
	return newServer(addr, mux)
}

func newServer(addr string, h nethttp.Handler) *Server {
	return &Server{srv: &nethttp.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}}
}

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
