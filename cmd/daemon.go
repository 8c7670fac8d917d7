package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	"go.uber.org/fx"
)

func startDaemon(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadConfig(ctx.GlobalString("config"))
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	if addr := ctx.GlobalString("addr"); addr != "" {
		cfg.Listen = addr
	}
	if secret := ctx.GlobalString("secret"); secret != "" {
		cfg.Secret = secret
		cfg.GeneratedSecret = false
	}

	app := fx.New(daemonOptions(cfg, os.Stdout, os.Stderr))
	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "start", err)
		return cli.NewExitError("", 1)
	}

	sig := <-app.Wait()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "stop", err)
	}
	if sig.ExitCode != 0 {
		return cli.NewExitError("", sig.ExitCode)
	}
	return nil
}
