package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
)

func remove(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	text := strings.Join(ctx.Args(), " ")
	if text == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no timer id provided"))
	}
	client, err := newClient(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "remove", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	res, err := client.RemoveText(cctx, text)
	if !printReply(ctx, "remove", err) {
		return nil
	}
	fmt.Println(res.Message)
	return nil
}
