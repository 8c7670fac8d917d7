package alarmcli

import (
	"context"
	"errors"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warpalarm/common"
)

var (
	ErrUnauthorized  = errors.New("daemon rejected the secret")
	ErrTimerNotFound = errors.New("timer doesn't exist")
	ErrTooManyTimers = errors.New("too many timers running")
)

// RPC error codes returned by the daemon.
const (
	codeTimerNotFound = -32001
	codeTooManyTimers = -32002
)

func invoke[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var res T
	if err := c.rpc.CallResult(ctx, method, params, &res); err != nil {
		return nil, translateError(method, err)
	}
	return &res, nil
}

// translateError maps daemon error codes onto package sentinels. The
// daemon's message is kept so it can be shown to the user verbatim.
func translateError(method string, err error) error {
	var rpcErr *jrpc2.Error
	if errors.As(err, &rpcErr) {
		switch int(rpcErr.Code) {
		case codeTimerNotFound:
			return &Error{Message: rpcErr.Message, err: ErrTimerNotFound}
		case codeTooManyTimers:
			return &Error{Message: rpcErr.Message, err: ErrTooManyTimers}
		}
	}
	return fmt.Errorf("failed to invoke %s: %w", method, err)
}

// Error carries the daemon's user-facing message for a failed call.
type Error struct {
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.err }

// Add schedules a timer from text such as "10m tea".
func (c *Client) Add(ctx context.Context, text string) (*common.AddResult, error) {
	return invoke[common.AddResult](ctx, c, common.MethodAlarmAdd, &common.AddParams{Text: text})
}

// Remove cancels the timer with the given id.
func (c *Client) Remove(ctx context.Context, id uint64) (*common.MessageResult, error) {
	return invoke[common.MessageResult](ctx, c, common.MethodAlarmRemove, &common.RemoveParams{ID: &id})
}

// RemoveText cancels the timer whose id is the first number in text.
func (c *Client) RemoveText(ctx context.Context, text string) (*common.MessageResult, error) {
	return invoke[common.MessageResult](ctx, c, common.MethodAlarmRemove, &common.RemoveParams{Text: text})
}

// List returns the pending timers in expiry order.
func (c *Client) List(ctx context.Context) (*common.ListResult, error) {
	return invoke[common.ListResult](ctx, c, common.MethodAlarmList, nil)
}

// Command runs a raw command line such as "add 5m tea" and returns the
// reply lines.
func (c *Client) Command(ctx context.Context, line string) ([]string, error) {
	res, err := invoke[common.CommandResult](ctx, c, common.MethodAlarmCommand, &common.CommandParams{Line: line})
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// Version returns the daemon's build information.
func (c *Client) Version(ctx context.Context) (*common.VersionResult, error) {
	return invoke[common.VersionResult](ctx, c, common.MethodGetVersion, nil)
}
