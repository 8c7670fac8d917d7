// Package cmd implements the warpalarm command line: the daemon and the
// client commands that talk to it.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedcommon "github.com/warpdl/warpalarm/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is set by Execute and read by the daemon for
// system.getVersion and by clients for the version check.
var currentBuildArgs BuildArgs

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "addr",
		Usage:  "daemon address (host:port or ws:// URL)",
		EnvVar: sharedcommon.ListenEnv,
	},
	cli.StringFlag{
		Name:   "secret",
		Usage:  "RPC bearer secret",
		EnvVar: sharedcommon.SecretEnv,
	},
	cli.StringFlag{
		Name:   "config, c",
		Usage:  "path to the YAML config file",
		EnvVar: sharedcommon.ConfigPathEnv,
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "warpalarm",
		HelpName:              "warpalarm",
		Usage:                 "Named countdown timers backed by a small daemon.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "warpalarm <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the timer daemon",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             startDaemon,
			},
			{
				Name:               "add",
				Aliases:            []string{"a"},
				Usage:              "add a timer",
				UsageText:          "<duration> <reason>",
				Description:        AddDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             add,
				Flags:              addFlags,
			},
			{
				Name:               "remove",
				Aliases:            []string{"rm"},
				Usage:              "remove a timer",
				UsageText:          "<timer id>",
				Description:        RemoveDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             remove,
			},
			{
				Name:               "list",
				Aliases:            []string{"l"},
				Usage:              "list running timers",
				UsageText:          " ",
				Description:        ListDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             list,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "print timer events as they happen",
				UsageText:          " ",
				Description:        WatchDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             watch,
				Flags:              watchFlags,
			},
			{
				Name:               "shell",
				Aliases:            []string{"sh"},
				Usage:              "interactive timer prompt",
				UsageText:          " ",
				Description:        ShellDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             shell,
			},
			{
				Name:               "config",
				Usage:              "print the effective daemon configuration",
				UsageText:          " ",
				Description:        ConfigDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             showConfig,
				Flags:              configFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of warpalarm",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
