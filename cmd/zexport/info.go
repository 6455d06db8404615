package main

import (
	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:  "info",
	Usage: "get a summary of the stored export",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "show-mnemonic",
			Usage: "include the wallet seed phrase",
		},
	},
	Action: infoAction,
}

func infoAction(ctx *cli.Context) error {
	repo, cleanup, err := getRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	exportInfo, err := repo.GetExportInfo(ctx.Context)
	if err != nil {
		return err
	}

	return printJSON(ctx.App.Writer, toExportInfoView(exportInfo, ctx.Bool("show-mnemonic")))
}
