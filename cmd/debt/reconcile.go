package main

import (
	"fmt"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored account usage with the ledger",
		Long: `Derive each account's used amount from its withdrawals and payments
and compare it with the stored figure. With --apply, drifted accounts are
corrected in a single transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			results, err := report.NewReporter(store).Reconcile(ctx, apply)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				writeLine(out, cli.InfoStyle.Render("No accounts to reconcile."))
				return nil
			}

			writeLine(out, renderReconciliation(results))

			drifted := countDrifted(results)
			switch {
			case drifted == 0:
				writeLine(out, cli.FormatSuccess("All accounts match the ledger"))
			case apply:
				writeLine(out, cli.FormatSuccess(fmt.Sprintf("Corrected %d account(s)", drifted)))
			default:
				writeLine(out, cli.FormatWarning(fmt.Sprintf("%d account(s) drift from the ledger; rerun with --apply to fix", drifted)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write derived usage back to drifted accounts")

	return cmd
}

func countDrifted(results []report.Reconciliation) int {
	n := 0
	for _, r := range results {
		if !r.InSync() {
			n++
		}
	}
	return n
}

func renderReconciliation(results []report.Reconciliation) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		drift := cli.SubtleStyle.Render("-")
		if !r.InSync() {
			drift = cli.WarningStyle.Render(cli.FormatMoney(r.Drift))
		}
		rows = append(rows, []string{
			r.Account.ID,
			r.Account.Name,
			cli.FormatMoney(r.StoredUsed),
			cli.FormatMoney(r.DerivedUsed),
			drift,
			cli.FormatMoney(r.AvailableCredit),
		})
	}
	return cli.RenderTable([]string{"ID", "NAME", "STORED", "LEDGER", "DRIFT", "AVAILABLE"}, rows)
}
