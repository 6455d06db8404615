package main

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/urfave/cli/v2"
	"github.com/zewif/zcashd-migrate/internal/core/domain"
)

var listtransactions = cli.Command{
	Name:  "txs",
	Usage: "get the list of exported transactions",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "list only the transactions relevant to this account key",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "include transparent outputs and note positions",
		},
	},
	Action: listTransactionsAction,
}

var gettransaction = cli.Command{
	Name:  "tx",
	Usage: "get an exported transaction",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "txid",
			Usage:    "the hash of the transaction",
			Required: true,
		},
	},
	Action: getTransactionAction,
}

func listTransactionsAction(ctx *cli.Context) error {
	var account *domain.Account

	repo, cleanup, err := getRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if accountKey := ctx.String("account"); accountKey != "" {
		key, err := domain.ParseAccountKey(accountKey)
		if err != nil {
			return &invalidUsageError{ctx, ctx.Command.Name}
		}
		if account, err = repo.GetAccount(ctx.Context, key); err != nil {
			return err
		}
	}

	txs, err := repo.GetTransactions(ctx.Context)
	if err != nil {
		return err
	}

	verbose := ctx.Bool("verbose")
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		if account != nil && !account.IsRelevant(tx.TxID) {
			continue
		}
		views = append(views, toTransactionView(tx, verbose))
	}
	return printJSON(ctx.App.Writer, views)
}

func getTransactionAction(ctx *cli.Context) error {
	txid, err := chainhash.NewHashFromStr(ctx.String("txid"))
	if err != nil {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	repo, cleanup, err := getRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	tx, err := repo.GetTransaction(ctx.Context, *txid)
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, toTransactionView(tx, true))
}
