// Package server exposes the alarm Api over JSON-RPC 2.0. Requests arrive
// as HTTP POSTs on /jsonrpc or over a WebSocket on /jsonrpc/ws, where the
// daemon also pushes alarm.added, alarm.removed and alarm.expired
// notifications.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/logger"
	"go.uber.org/multierr"
)

// Server is the daemon's HTTP front end.
type Server struct {
	log  logger.Logger
	rpc  *RPCServer
	http *http.Server
}

// NewServer creates a Server for rs. Nothing listens until Serve is called.
func NewServer(l logger.Logger, rs *RPCServer) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Server{log: l, rpc: rs}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.ToStdLogger(l),
	}
	return s
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(common.RouteJSONRPC, requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle(common.RouteWebSocket, requireToken(s.rpc.secret, http.HandlerFunc(s.rpc.handleWebSocket)))
	mux.HandleFunc(common.RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Serve accepts connections on l until Shutdown is called. It returns nil
// after a clean shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info("listening on %s", l.Addr())
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, ends open WebSocket sessions and
// closes the RPC bridge.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.rpc.closeSessions()
	return multierr.Combine(err, s.rpc.Close())
}
