package main

import (
	"github.com/urfave/cli/v2"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

var listaccounts = cli.Command{
	Name:  "accounts",
	Usage: "get the list of all exported accounts",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "include addresses and relevant transactions of each account",
		},
	},
	Action: listAccountsAction,
}

var getaccount = cli.Command{
	Name:  "account",
	Usage: "get an exported account with its addresses",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "key",
			Usage:    "the hex encoded account key",
			Required: true,
		},
	},
	Action: getAccountAction,
}

func listAccountsAction(ctx *cli.Context) error {
	repo, cleanup, err := getRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	accounts, err := repo.GetAccounts(ctx.Context)
	if err != nil {
		return err
	}

	verbose := ctx.Bool("verbose")
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a, verbose))
	}
	return printJSON(ctx.App.Writer, views)
}

func getAccountAction(ctx *cli.Context) error {
	key, err := domain.ParseAccountKey(ctx.String("key"))
	if err != nil {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	repo, cleanup, err := getRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := repo.GetAccount(ctx.Context, key)
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, toAccountView(account, true))
}
