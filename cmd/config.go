package cmd

import "time"

const (
	// DEF_CALL_TIMEOUT bounds a single client request to the daemon.
	DEF_CALL_TIMEOUT = time.Second * 10
	// DEF_TICK is how often countdown bars are redrawn.
	DEF_TICK = time.Second
)

const DESCRIPTION = `
WarpAlarm keeps a small set of named countdown timers in a background
daemon and tells you when each one runs out. Timers are created from
plain text such as "10m tea" and live only as long as the daemon does.
`

const (
	DaemonDescription = `The daemon command starts the timer service in the foreground.
Clients connect to it over JSON-RPC on the configured listen address.

Example:
        warpalarm daemon
        warpalarm daemon --config /etc/warpalarm.yaml

`
	AddDescription = `The add command creates a timer from a duration and a reason.
Durations are written as up to two digits of seconds (s), minutes (m)
or hours (h), and up to three digits of days (d), in any order.

Example:
        warpalarm add 10m tea
        warpalarm add 1h30m stand up --wait

`
	RemoveDescription = `The remove command cancels a timer by its id, as shown by
"warpalarm list".

Example:
        warpalarm remove 3

`
	ListDescription = `The list command shows every running timer, soonest first,
with the time it has left.

Example:
        warpalarm list

`
	WatchDescription = `The watch command stays connected to the daemon and prints
timer events as they happen.

Example:
        warpalarm watch
        warpalarm watch --bars

`
	ShellDescription = `The shell command opens an interactive prompt that accepts
the add, remove, list and help commands and prints expiries as they
happen.

Example:
        warpalarm shell

`
	ConfigDescription = `The config command prints the effective daemon configuration
as YAML, or writes it to a file.

Example:
        warpalarm config
        warpalarm config --write /etc/warpalarm.yaml

`
)

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{if .VisibleFlags}}

Global Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`
