package server

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/api"
	"github.com/warpdl/warpalarm/internal/scheduler"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// Custom JSON-RPC error codes for timer operations.
const (
	codeTimerNotFound = jrpc2.Code(-32001)
	codeTooManyTimers = jrpc2.Code(-32002)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoints.
type RPCConfig struct {
	Secret    string // bearer token; empty rejects every request
	Version   string
	Commit    string
	BuildType string
}

// RPCServer holds the alarm method table and serves it over HTTP and
// WebSocket.
type RPCServer struct {
	log      logger.Logger
	api      *api.Api
	notifier *RPCNotifier
	methods  handler.Map
	bridge   jhttp.Bridge
	secret   string
	version  common.VersionResult

	sessMu   sync.Mutex
	sessions map[*jrpc2.Server]struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewRPCServer creates the method table for a. notifier may be nil, in
// which case WebSocket sessions receive no pushes.
func NewRPCServer(l logger.Logger, cfg *RPCConfig, a *api.Api, notifier *RPCNotifier) *RPCServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rs := &RPCServer{
		log:      l,
		api:      a,
		notifier: notifier,
		secret:   cfg.Secret,
		version: common.VersionResult{
			Version:   cfg.Version,
			Commit:    cfg.Commit,
			BuildType: cfg.BuildType,
		},
	}
	rs.methods = handler.Map{
		common.MethodGetVersion:   handler.New(rs.systemGetVersion),
		common.MethodAlarmAdd:     handler.New(rs.alarmAdd),
		common.MethodAlarmRemove:  handler.New(rs.alarmRemove),
		common.MethodAlarmList:    handler.New(rs.alarmList),
		common.MethodAlarmCommand: handler.New(rs.alarmCommand),
	}
	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	v := rs.version
	return &v, nil
}

func (rs *RPCServer) alarmAdd(_ context.Context, p *common.AddParams) (*common.AddResult, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: text"}
	}
	t, lines, err := rs.api.Add(p.Text)
	if err != nil {
		if errors.Is(err, scheduler.ErrCapacityExceeded) {
			return nil, &jrpc2.Error{Code: codeTooManyTimers, Message: api.MsgTooMany}
		}
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	return &common.AddResult{
		ID:        t.ID,
		Label:     t.Label,
		Message:   lines[0],
		ExpiresAt: t.ExpiresAt,
	}, nil
}

func (rs *RPCServer) alarmRemove(_ context.Context, p *common.RemoveParams) (*common.MessageResult, error) {
	var err error
	if p.ID != nil {
		_, _, err = rs.api.RemoveID(*p.ID)
	} else {
		_, _, err = rs.api.Remove(p.Text)
	}
	if err != nil {
		return nil, &jrpc2.Error{Code: codeTimerNotFound, Message: api.MsgNotFound}
	}
	return &common.MessageResult{Message: api.MsgRemoved}, nil
}

func (rs *RPCServer) alarmList(_ context.Context) (*common.ListResult, error) {
	timers, lines := rs.api.List()
	now := rs.api.Scheduler().Now()
	out := make([]common.TimerInfo, 0, len(timers))
	for _, t := range timers {
		out = append(out, common.TimerInfo{
			ID:        t.ID,
			Label:     t.Label,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
			Remaining: scheduler.FormatRemaining(t.Remaining(now)),
		})
	}
	return &common.ListResult{Timers: out, Lines: lines}, nil
}

func (rs *RPCServer) alarmCommand(_ context.Context, p *common.CommandParams) (*common.CommandResult, error) {
	return &common.CommandResult{Lines: rs.api.Command(p.Line)}, nil
}

// Close shuts down the HTTP bridge. Later calls return the first result.
func (rs *RPCServer) Close() error {
	rs.closeOnce.Do(func() {
		rs.closeErr = rs.bridge.Close()
	})
	return rs.closeErr
}
