// Package alarmcli is the Go client for the warpalarm daemon. It speaks
// JSON-RPC 2.0 over a WebSocket so that a single connection carries both
// calls and alarm push notifications.
package alarmcli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warpalarm/common"
)

type Client struct {
	rpc  *jrpc2.Client
	ch   *wsChannel
	d    *Dispatcher
	once sync.Once
}

// Options configures NewClient.
type Options struct {
	// Dispatcher receives push notifications. A new one is created when nil.
	Dispatcher *Dispatcher
	// HTTPClient is used for the WebSocket handshake.
	HTTPClient *http.Client
}

// URL turns a listen address such as "127.0.0.1:9411" into the daemon's
// WebSocket URL. Addresses that already carry a ws:// or wss:// scheme are
// returned unchanged.
func URL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	if rest, ok := strings.CutPrefix(addr, "http://"); ok {
		addr = rest
	}
	return "ws://" + addr + common.RouteWebSocket
}

// NewClient connects to the daemon at addr and authenticates with secret.
// The connection lives until Close or until ctx is cancelled.
func NewClient(ctx context.Context, addr, secret string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	d := opts.Dispatcher
	if d == nil {
		d = NewDispatcher()
	}
	conn, resp, err := cws.Dial(ctx, URL(addr), &cws.DialOptions{
		HTTPClient: opts.HTTPClient,
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + secret}},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	ch := newWSChannel(ctx, conn)
	return &Client{
		rpc: jrpc2.NewClient(ch, &jrpc2.ClientOptions{OnNotify: d.dispatch}),
		ch:  ch,
		d:   d,
	}, nil
}

// Dispatcher returns the notification dispatcher.
func (c *Client) Dispatcher() *Dispatcher {
	return c.d
}

// Done is closed when the connection to the daemon is lost or closed.
func (c *Client) Done() <-chan struct{} {
	return c.ch.done
}

// Err reports why the connection ended, nil while it is open.
func (c *Client) Err() error {
	return c.ch.err()
}

// Close ends the session.
func (c *Client) Close() (err error) {
	c.once.Do(func() {
		err = c.rpc.Close()
	})
	return err
}

// wsChannel adapts a coder/websocket.Conn to the jrpc2 channel.Channel
// interface and records the first receive error.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context

	mu      sync.Mutex
	recvErr error
	done    chan struct{}
	once    sync.Once
}

func newWSChannel(ctx context.Context, conn *cws.Conn) *wsChannel {
	return &wsChannel{conn: conn, ctx: ctx, done: make(chan struct{})}
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	if err != nil {
		c.finish(err)
	}
	return data, err
}

func (c *wsChannel) Close() error {
	c.finish(nil)
	return c.conn.Close(cws.StatusNormalClosure, "")
}

func (c *wsChannel) finish(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.recvErr = err
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *wsChannel) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recvErr
}
