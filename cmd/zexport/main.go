package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
	"github.com/zewif/zcashd-migrate/internal/core/ports"
	dbbadger "github.com/zewif/zcashd-migrate/internal/infrastructure/storage/db/badger"
)

var (
	defaultDbDir = filepath.Join(btcutil.AppDataDir("zmigrate", false), "db")

	dbDirFlag = &cli.StringFlag{
		Name:    "db-dir",
		Usage:   "the directory of the export db",
		EnvVars: []string{"ZMIGRATE_DB_DIR"},
		Value:   defaultDbDir,
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "zexport"
	app.Usage = "Command line interface to inspect a zcashd wallet export"
	app.Flags = []cli.Flag{dbDirFlag}
	app.Commands = append(
		app.Commands,
		&info,
		&listaccounts,
		&getaccount,
		&listtransactions,
		&gettransaction,
	)
	return app
}

// getRepository opens the export db. The returned cleanup closes it.
func getRepository(ctx *cli.Context) (ports.ExportRepository, func(), error) {
	dbDir := ctx.String(dbDirFlag.Name)
	if _, err := os.Stat(dbDir); err != nil {
		return nil, nil, fmt.Errorf("export db not found in %s", dbDir)
	}

	dbManager, err := dbbadger.NewDbManager(dbDir, nil)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { dbManager.Close() }

	return dbManager.ExportRepository(), cleanup, nil
}

func printJSON(w io.Writer, resp interface{}) error {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to encode response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(buf))
	return err
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[zexport] %v\n", err)
	}
	os.Exit(1)
}
