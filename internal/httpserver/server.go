package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server wraps the http.Server with sensible defaults.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on the provided port. writeTimeout bounds
// the whole response, so it must leave room for media uploads.
func New(port int, handler http.Handler, writeTimeout time.Duration) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       2 * writeTimeout,
		},
	}
}

// Start begins serving HTTP traffic. A graceful shutdown is not reported as an error.
func (s *Server) Start() error {
	return ignoreClosed(s.inner.ListenAndServe())
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	return ignoreClosed(s.inner.Serve(l))
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
