package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/internal/config"
	"github.com/warpdl/warpalarm/pkg/alarmcli"
)

var errNoSecret = errors.New("no secret configured: pass --secret or set one in the config file")

// loadConfig is swapped in tests.
var loadConfig = func(path string) (*config.Config, error) {
	return config.NewLoader().Load(path)
}

// clientTarget resolves the daemon address and secret. Flags and their
// environment variables win over the config file.
func clientTarget(ctx *cli.Context) (addr, secret string, err error) {
	addr = ctx.GlobalString("addr")
	secret = ctx.GlobalString("secret")
	if addr != "" && secret != "" {
		return addr, secret, nil
	}
	cfg, err := loadConfig(ctx.GlobalString("config"))
	if err != nil {
		return "", "", err
	}
	if addr == "" {
		addr = cfg.Listen
	}
	if secret == "" {
		if cfg.GeneratedSecret {
			return "", "", errNoSecret
		}
		secret = cfg.Secret
	}
	return addr, secret, nil
}

// newClient connects to the daemon and warns if its version differs from
// ours. Pushes go to d, which may be nil.
func newClient(ctx *cli.Context, d *alarmcli.Dispatcher) (*alarmcli.Client, error) {
	addr, secret, err := clientTarget(ctx)
	if err != nil {
		return nil, err
	}
	client, err := alarmcli.NewClient(context.Background(), addr, secret, &alarmcli.Options{Dispatcher: d})
	if err != nil {
		return nil, err
	}
	cctx, cancel := callContext()
	defer cancel()
	client.CheckVersionMismatch(cctx, os.Stderr, currentBuildArgs.Version)
	return client, nil
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DEF_CALL_TIMEOUT)
}
