package main

import (
	"fmt"
	"os"

	"github.com/warpdl/warpalarm/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

var osExit = os.Exit

func main() {
	osExit(runMain(os.Args, func(args []string) error {
		return cmd.Execute(args, cmd.BuildArgs{
			Version:   version,
			Commit:    commit,
			Date:      date,
			BuildType: buildType,
		})
	}))
}

func runMain(args []string, execute func([]string) error) int {
	if err := execute(args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Printf("warpalarm: %s\n", msg)
		}
		return 1
	}
	return 0
}
