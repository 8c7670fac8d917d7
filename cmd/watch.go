package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedcommon "github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/alarmcli"
)

var (
	watchBars bool

	watchFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "bars, b",
			Usage:       "draw a countdown bar for every running timer (default: false)",
			Destination: &watchBars,
		},
	}
)

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	pushes := make(chan push, 64)
	d := alarmcli.NewDispatcher()
	d.OnAny(forwardTo(pushes))

	client, err := newClient(ctx, d)
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if !watchBars {
		printPushes(os.Stdout, client, pushes, sigs)
		return nil
	}
	b := newBarWatcher(client)
	if err := b.sync(); err != nil {
		common.PrintRuntimeErr(ctx, "watch", "list", err)
		return nil
	}
	b.run(pushes, sigs)
	return nil
}

// printPushes writes every push message to w until a signal arrives or the
// connection to the daemon drops.
func printPushes(w io.Writer, client *alarmcli.Client, pushes <-chan push, stop <-chan os.Signal) {
	for {
		select {
		case ps := <-pushes:
			fmt.Fprintln(w, ps.n.Message)
		case <-stop:
			return
		case <-client.Done():
			if err := client.Err(); err != nil {
				fmt.Fprintf(w, "connection to daemon lost: %v\n", err)
			}
			return
		}
	}
}

type watchedTimer struct {
	info sharedcommon.TimerInfo
	bar  *mpb.Bar
}

// barWatcher keeps one countdown bar per running timer.
type barWatcher struct {
	client *alarmcli.Client
	p      *mpb.Progress
	timers map[uint64]*watchedTimer
}

func newBarWatcher(client *alarmcli.Client) *barWatcher {
	return &barWatcher{
		client: client,
		p:      mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(DEF_TICK/4)),
		timers: make(map[uint64]*watchedTimer),
	}
}

// sync adds bars for timers the daemon has that are not shown yet.
func (b *barWatcher) sync() error {
	cctx, cancel := callContext()
	defer cancel()
	res, err := b.client.List(cctx)
	if err != nil {
		return err
	}
	for _, info := range res.Timers {
		if _, ok := b.timers[info.ID]; ok {
			continue
		}
		b.timers[info.ID] = &watchedTimer{
			info: info,
			bar:  common.InitCountdownBar(b.p, info.ID, info.Label, info.CreatedAt, info.ExpiresAt),
		}
	}
	return nil
}

func (b *barWatcher) run(pushes <-chan push, stop <-chan os.Signal) {
	ticker := time.NewTicker(DEF_TICK)
	defer ticker.Stop()
	defer b.close()
	for {
		select {
		case now := <-ticker.C:
			for _, t := range b.timers {
				common.TickCountdown(t.bar, t.info.CreatedAt, t.info.ExpiresAt, now)
			}
		case ps := <-pushes:
			b.apply(ps)
		case <-stop:
			return
		case <-b.client.Done():
			return
		}
	}
}

func (b *barWatcher) apply(ps push) {
	switch ps.method {
	case sharedcommon.NotifyAlarmAdded:
		// pushes lack the deadline; fetch it
		_ = b.sync()
	case sharedcommon.NotifyAlarmExpired:
		if t, ok := b.timers[ps.n.ID]; ok {
			common.TickCountdown(t.bar, t.info.CreatedAt, t.info.ExpiresAt, t.info.ExpiresAt)
			delete(b.timers, ps.n.ID)
		}
	case sharedcommon.NotifyAlarmRemoved:
		if t, ok := b.timers[ps.n.ID]; ok {
			t.bar.Abort(false)
			delete(b.timers, ps.n.ID)
		}
	}
}

func (b *barWatcher) close() {
	for id, t := range b.timers {
		t.bar.Abort(false)
		delete(b.timers, id)
	}
	b.p.Wait()
}
