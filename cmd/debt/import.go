package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/ofx"
	"github.com/Veraticus/debt-manager/internal/service"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var (
		accountID string
		category  string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import ledger transactions from OFX or QFX statements exported by your bank.

Debits become withdrawals and credits become payments. Re-importing the same
statement is safe: transactions already in the ledger are skipped.`,
		Example: `  debt import ~/Downloads/visa_2024_01.qfx --account visa
  debt import ~/Downloads/*.ofx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
			ctx := handler.HandleInterrupts(cmd.Context(), "Files finished before the interrupt were saved.")

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var opts []ofx.Option
			if accountID != "" {
				if err := requireAccount(ctx, store, accountID); err != nil {
					return err
				}
				opts = append(opts, ofx.WithAccount(accountID))
			}
			if category != "" {
				opts = append(opts, ofx.WithCategory(category))
			}
			parser := ofx.NewParser(opts...)

			if accountID == "" {
				if err := checkStatementAccounts(ctx, store, parser, files); err != nil {
					return err
				}
			}

			summary, err := importFiles(ctx, store, parser, files, dryRun, cli.NewProgress(cmd.ErrOrStderr(), len(files), "Importing statements..."))
			if err != nil && !handler.WasInterrupted() {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				writeLine(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transaction(s) parsed from %d file(s), nothing saved",
					summary.parsed, summary.files)))
				return nil
			}
			writeLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transaction(s) from %d file(s); %d already in the ledger",
				summary.inserted, summary.files, summary.parsed-summary.inserted)))
			for _, f := range summary.failed {
				writeLine(out, cli.FormatWarning("Skipped "+f))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "book every transaction against this account ID")
	cmd.Flags().StringVar(&category, "category", "", "category for transactions without an inferred one")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "parse without saving")

	return cmd
}

type importSummary struct {
	failed   []string
	files    int
	parsed   int
	inserted int
}

// importFiles parses each file and saves its transactions in one write per
// file. A file that cannot be opened or parsed is reported and skipped.
func importFiles(ctx context.Context, store service.Storage, parser *ofx.Parser, files []string, dryRun bool, progress *cli.Progress) (importSummary, error) {
	var summary importSummary
	defer progress.Finish()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		txns, err := parseStatement(ctx, parser, path)
		progress.Add(1)
		if err != nil {
			common.LogError(err, "Failed to import statement", common.Fields{"file": path})
			summary.failed = append(summary.failed, filepath.Base(path))
			continue
		}
		summary.files++
		summary.parsed += len(txns)

		if dryRun || len(txns) == 0 {
			continue
		}

		var inserted int
		err = common.WithRetry(ctx, func() error {
			var saveErr error
			inserted, saveErr = store.SaveTransactions(ctx, txns)
			return saveErr
		}, common.RetryOptions{})
		if err != nil {
			return summary, fmt.Errorf("failed to save transactions from %s: %w", filepath.Base(path), err)
		}
		summary.inserted += inserted

		slog.Info("Imported statement",
			"file", filepath.Base(path),
			"parsed", len(txns),
			"inserted", inserted)
	}

	return summary, nil
}

// requireAccount returns a user error wrapping ErrUnknownAccount when no
// account with id exists.
func requireAccount(ctx context.Context, store service.Storage, id string) error {
	if _, err := store.GetAccount(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("no account with ID %q", id), common.ErrUnknownAccount)
		}
		return err
	}
	return nil
}

// checkStatementAccounts makes sure every account a statement books against
// exists. Files that cannot be read are left for importFiles to report.
func checkStatementAccounts(ctx context.Context, store service.Storage, parser *ofx.Parser, files []string) error {
	for _, path := range files {
		accounts, err := statementAccounts(ctx, parser, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		}
		for _, id := range accounts {
			if err := requireAccount(ctx, store, id); err != nil {
				var userErr *common.UserError
				if errors.As(err, &userErr) {
					return common.NewUserError(fmt.Sprintf("%s: %s; add it with 'debt accounts add --id %s' or pass --account",
						filepath.Base(path), userErr.UserMessage, id), common.ErrUnknownAccount)
				}
				return err
			}
		}
	}
	return nil
}

func statementAccounts(ctx context.Context, parser *ofx.Parser, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return parser.GetAccounts(ctx, f)
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

// expandFiles resolves glob patterns; literal paths that exist are kept as is.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}
