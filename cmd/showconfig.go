package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	"github.com/warpdl/warpalarm/internal/config"
	"gopkg.in/yaml.v3"
)

const maskedSecret = "********"

var (
	writeConfigPath string

	configFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "write, w",
			Usage:       "write the effective configuration to this file instead of printing it",
			Destination: &writeConfigPath,
		},
	}
)

func showConfig(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	loader := config.NewLoader()
	cfg, err := loader.Load(ctx.GlobalString("config"))
	if err != nil {
		common.PrintRuntimeErr(ctx, "config", "load", err)
		return nil
	}
	if writeConfigPath != "" {
		if err := loader.Save(writeConfigPath, cfg); err != nil {
			common.PrintRuntimeErr(ctx, "config", "save", err)
			return nil
		}
		fmt.Printf("Configuration written to %s\n", writeConfigPath)
		return nil
	}
	if err := printConfig(os.Stdout, cfg); err != nil {
		common.PrintRuntimeErr(ctx, "config", "print", err)
	}
	return nil
}

// printConfig writes cfg as YAML with the secret masked. A generated
// secret is left out since it would differ on every run.
func printConfig(w io.Writer, cfg *config.Config) error {
	c := *cfg
	switch {
	case c.GeneratedSecret:
		c.Secret = ""
	case c.Secret != "":
		c.Secret = maskedSecret
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return err
	}
	return enc.Close()
}
