// Package common holds helpers shared by the warpalarm CLI commands: error
// and help printing, version output and countdown bars.
package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"github.com/warpdl/warpalarm/internal/scheduler"
)

// VersionCmdStr is printed by the version command. Execute fills it in
// from the build arguments.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// InitCountdownBar adds a bar to p that fills up as a timer runs down.
// The bar's total is the timer's length in seconds; callers advance it with
// TickCountdown.
func InitCountdownBar(p *mpb.Progress, id uint64, label string, createdAt, expiresAt time.Time) *mpb.Bar {
	total := int64(expiresAt.Sub(createdAt) / time.Second)
	if total < 1 {
		total = 1
	}
	name := fmt.Sprintf("#%d %s", id, label)
	bar := p.New(total,
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.OnAbort(
				decor.OnComplete(
					decor.Any(func(decor.Statistics) string {
						return scheduler.FormatRemaining(time.Until(expiresAt))
					}, decor.WC{W: 9}),
					"expired",
				),
				"removed",
			),
		),
	)
	return bar
}

// TickCountdown moves bar to the number of seconds elapsed since createdAt.
// The bar completes once expiresAt has passed.
func TickCountdown(bar *mpb.Bar, createdAt, expiresAt, now time.Time) {
	if !now.Before(expiresAt) {
		bar.SetTotal(-1, true)
		return
	}
	bar.SetCurrent(int64(now.Sub(createdAt) / time.Second))
}

// Help shows application help, or help for the command named in the first
// argument.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	if err := showCommandHelp(ctx, arg); err != nil {
		return PrintErrWithHelp(ctx, err)
	}
	return nil
}

// GetVersion prints VersionCmdStr.
func GetVersion(ctx *cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr prints "<app>: <cmd>[<action>]: <err>". ctx may be nil.
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	name := os.Args[0]
	if ctx != nil && ctx.App != nil {
		name = ctx.App.HelpName
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(ctx, err, func() {
		if herr := showCommandHelp(ctx, ctx.Command.Name); herr != nil {
			fmt.Println(herr.Error())
		}
	})
}

// PrintErrWithHelp prints err followed by the application help and exits
// with status 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(ctx, err, func() {
		showAppHelpAndExit(ctx, 1)
	})
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

// UsageErrorCallback is the OnUsageError hook for the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// Beaut centers s in a field of width n.
func Beaut(s string, n int) string {
	pad := n - len(s)
	if pad <= 0 {
		return s
	}
	side := strings.Repeat(" ", pad/2)
	out := side + s + side
	if pad%2 != 0 {
		out += " "
	}
	return out
}
