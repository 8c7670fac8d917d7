package server

import (
	"context"
	"net/http"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// wsWriteTimeout bounds a single frame write. A session that stops reading
// is closed once a write overruns it.
var wsWriteTimeout = 5 * time.Second

// wsChannel adapts a coder/websocket.Conn to the jrpc2 channel.Channel
// interface, one JSON-RPC message per text frame.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	ctx, cancel := context.WithTimeout(c.ctx, wsWriteTimeout)
	defer cancel()
	return c.conn.Write(ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// handleWebSocket serves one JSON-RPC session per connection. The session
// can push alarm notifications for as long as it is registered with the
// notifier.
func (rs *RPCServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		rs.log.Warning("websocket accept: %v", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(rs.methods, &jrpc2.ServerOptions{AllowPush: true}).Start(ch)
	rs.trackSession(srv)
	defer rs.untrackSession(srv)
	if rs.notifier != nil {
		rs.notifier.Register(srv)
		defer rs.notifier.Unregister(srv)
	}
	if err := srv.Wait(); err != nil {
		rs.log.Info("websocket session ended: %v", err)
	}
}

func (rs *RPCServer) trackSession(srv *jrpc2.Server) {
	rs.sessMu.Lock()
	defer rs.sessMu.Unlock()
	if rs.sessions == nil {
		rs.sessions = make(map[*jrpc2.Server]struct{})
	}
	rs.sessions[srv] = struct{}{}
}

func (rs *RPCServer) untrackSession(srv *jrpc2.Server) {
	rs.sessMu.Lock()
	defer rs.sessMu.Unlock()
	delete(rs.sessions, srv)
}

// closeSessions stops every open WebSocket session. Hijacked connections
// are not closed by http.Server.Shutdown.
func (rs *RPCServer) closeSessions() {
	rs.sessMu.Lock()
	sessions := make([]*jrpc2.Server, 0, len(rs.sessions))
	for srv := range rs.sessions {
		sessions = append(sessions, srv)
	}
	rs.sessMu.Unlock()
	for _, srv := range sessions {
		srv.Stop()
	}
}
