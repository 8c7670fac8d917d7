package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedcommon "github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/alarmcli"
)

const shellBannerWidth = 40

// lineReader is the part of *readline.Instance the shell loop needs.
type lineReader interface {
	Readline() (string, error)
}

// commandFunc runs one command line against the daemon.
type commandFunc func(ctx context.Context, line string) ([]string, error)

func shell(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "alarm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "shell", "readline", err)
		return nil
	}
	defer rl.Close()

	d := alarmcli.NewDispatcher()
	d.On(sharedcommon.NotifyAlarmExpired, func(_ string, n *sharedcommon.TimerNotification) {
		fmt.Fprintln(rl.Stdout(), n.Message)
	})
	client, err := newClient(ctx, d)
	if err != nil {
		common.PrintRuntimeErr(ctx, "shell", "new_client", err)
		return nil
	}
	defer client.Close()

	fmt.Fprintln(rl.Stdout(), strings.Repeat("-", shellBannerWidth))
	fmt.Fprintln(rl.Stdout(), common.Beaut("WarpAlarm", shellBannerWidth))
	fmt.Fprintln(rl.Stdout(), strings.Repeat("-", shellBannerWidth))
	fmt.Fprintln(rl.Stdout(), `Type "help" for commands, "exit" to leave.`)
	runShell(rl, rl.Stdout(), client.Command, client.Done())
	return nil
}

// runShell reads command lines until exit, end of input or done closes,
// sending each to exec and printing the reply lines to w.
func runShell(in lineReader, w io.Writer, exec commandFunc, done <-chan struct{}) {
	for {
		select {
		case <-done:
			fmt.Fprintln(w, "Connection to daemon closed.")
			return
		default:
		}
		line, err := in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			return
		}
		cctx, cancel := callContext()
		lines, err := exec(cctx, line)
		cancel()
		if err != nil {
			var rerr *alarmcli.Error
			if errors.As(err, &rerr) {
				fmt.Fprintln(w, rerr.Message)
				continue
			}
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}
}
