package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedcommon "github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/alarmcli"
)

var (
	waitForTimer bool

	addFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "wait, w",
			Usage:       "stay attached and show a countdown until the timer expires (default: false)",
			Destination: &waitForTimer,
		},
	}
)

func add(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	text := strings.Join(ctx.Args(), " ")
	if text == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no duration provided"))
	}
	var pushes chan push
	d := alarmcli.NewDispatcher()
	if waitForTimer {
		pushes = make(chan push, 64)
		d.On(sharedcommon.NotifyAlarmExpired, forwardTo(pushes))
		d.On(sharedcommon.NotifyAlarmRemoved, forwardTo(pushes))
	}
	client, err := newClient(ctx, d)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	res, err := client.Add(cctx, text)
	cancel()
	if !printReply(ctx, "add", err) {
		return nil
	}
	fmt.Println(res.Message)
	if !waitForTimer {
		return nil
	}
	waitCountdown(client, res, time.Now(), pushes)
	return nil
}

// push is a notification together with its method name.
type push struct {
	method string
	n      *sharedcommon.TimerNotification
}

// forwardTo returns a handler that queues pushes on ch, dropping them when
// ch is full so the client's receive loop never blocks.
func forwardTo(ch chan<- push) alarmcli.NotificationHandler {
	return func(method string, n *sharedcommon.TimerNotification) {
		select {
		case ch <- push{method: method, n: n}:
		default:
		}
	}
}

// waitCountdown draws a countdown bar for the added timer until the daemon
// reports that it expired or was removed, or the connection drops.
func waitCountdown(client *alarmcli.Client, res *sharedcommon.AddResult, createdAt time.Time, pushes <-chan push) {
	p := mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(DEF_TICK/4))
	bar := common.InitCountdownBar(p, res.ID, res.Label, createdAt, res.ExpiresAt)
	ticker := time.NewTicker(DEF_TICK)
	defer ticker.Stop()

	var last *sharedcommon.TimerNotification
loop:
	for {
		select {
		case now := <-ticker.C:
			common.TickCountdown(bar, createdAt, res.ExpiresAt, now)
		case ps := <-pushes:
			if ps.n.ID != res.ID {
				continue
			}
			last = ps.n
			if ps.method == sharedcommon.NotifyAlarmExpired {
				common.TickCountdown(bar, createdAt, res.ExpiresAt, res.ExpiresAt)
			} else {
				bar.Abort(false)
			}
			break loop
		case <-client.Done():
			bar.Abort(false)
			break loop
		}
	}
	p.Wait()
	if last != nil {
		fmt.Println(last.Message)
	}
}

// printReply reports err and returns false if the call failed. Daemon
// replies such as "Timer doesn't exist." are printed as they are.
func printReply(ctx *cli.Context, cmd string, err error) bool {
	if err == nil {
		return true
	}
	var rerr *alarmcli.Error
	if errors.As(err, &rerr) {
		fmt.Println(rerr.Message)
		return false
	}
	common.PrintRuntimeErr(ctx, cmd, "call", err)
	return false
}
