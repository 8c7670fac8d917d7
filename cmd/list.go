package cmd

import (
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	res, err := client.List(cctx)
	if !printReply(ctx, "list", err) {
		return nil
	}
	for _, line := range res.Lines {
		fmt.Println(line)
	}
	return nil
}
