package application

import (
	"context"
	"runtime"

	"github.com/zewif/zcashd-migrate/internal/core/domain"
	"github.com/zewif/zcashd-migrate/internal/core/legacy"
	"golang.org/x/sync/errgroup"
)

// MigrationOpts ...
type MigrationOpts struct {
	// Workers bounds the number of transactions whose facts are extracted
	// concurrently. Defaults to the number of CPUs.
	Workers         int
	EmptyTreePolicy EmptyTreePolicy
	// Sink receives diagnostics as they are reported, in addition to the
	// ones collected in the result.
	Sink DiagnosticSink
}

// MigrationResult ...
type MigrationResult struct {
	Export      *domain.Export
	Registry    *domain.AddressRegistry
	Diagnostics []Diagnostic
	Positions   PositionOutcome
	// Passes counts the transactions decided by each attribution pass.
	Passes map[AttributionPass]int
}

type extraction struct {
	facts *TxFacts
	err   error
}

// Migrate turns a decoded wallet into its export form. Only structural
// problems of the wallet make it fail; everything else is reported as a
// diagnostic and recovered.
func Migrate(
	ctx context.Context, w *legacy.Wallet, opts MigrationOpts,
) (*MigrationResult, error) {
	if w == nil {
		return nil, ErrNilWallet
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	collector := &Diagnostics{}
	sink := TeeSink(collector, opts.Sink)
	view := newWalletView(w)

	registry := buildAddressRegistry(view, sink)
	accounts := buildAccounts(view, registry, sink)

	walletTxs := w.Transactions.All()
	txs := ConvertTransactions(walletTxs)

	extractions, err := extractAll(ctx, view, walletTxs, opts.Workers)
	if err != nil {
		return nil, err
	}

	engine := NewAttributionEngine(registry, accounts)
	passes := make(map[AttributionPass]int)
	for i, tx := range walletTxs {
		var attribution Attribution
		if res := extractions[i]; res.err != nil {
			warnf(
				sink, StageExtraction, tx.TxID.String(),
				"%s, falling back to the default account", res.err,
			)
			attribution = engine.AttributeFailure()
		} else {
			attribution = engine.Attribute(res.facts)
		}
		if len(attribution.Keys) == 0 {
			warnf(sink, StageAttribution, tx.TxID.String(), "no account to attribute to")
		}
		engine.Apply(tx.TxID, attribution)
		passes[attribution.Pass]++
	}

	outcome := ReconstructPositions(w.OrchardNoteCommitmentTree, txs, opts.EmptyTreePolicy)
	if outcome.ParseError != nil {
		warnf(
			sink, StagePositions, "",
			"discarding note commitment tree: %s", outcome.ParseError,
		)
	}
	if outcome.PlaceholderUsed {
		warnf(
			sink, StagePositions, "",
			"assigned %d placeholder positions", len(outcome.Positions),
		)
	}
	outcome.Updated = MergePositions(outcome.Positions, txs)

	export := domain.NewExport(w.Network.String())
	export.Accounts = accounts
	export.Transactions = txs
	export.PositionSource = outcome.Source
	if export.Bip39Mnemonic = ConvertSeedMaterial(w); export.Bip39Mnemonic == nil {
		infof(sink, StageAccounts, "wallet has no mnemonic seed")
	}

	return &MigrationResult{
		Export:      export,
		Registry:    registry,
		Diagnostics: collector.Entries(),
		Positions:   outcome,
		Passes:      passes,
	}, nil
}

// extractAll extracts the facts of every transaction with at most workers
// goroutines. Each goroutine writes only its own slot of the result.
func extractAll(
	ctx context.Context, v *walletView, txs []*legacy.WalletTx, workers int,
) ([]extraction, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	extractor := &Extractor{v}
	results := make([]extraction, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			facts, err := extractor.Extract(tx)
			results[i] = extraction{facts, err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
