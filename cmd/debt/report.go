package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarize limits, alerts and account drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cfg, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reporter := report.NewReporter(store)
			at := evaluationTime(cfg)

			statuses, err := reporter.LimitStatuses(ctx, at)
			if err != nil {
				return limitError(err)
			}
			reconciliations, err := reporter.Reconcile(ctx, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeLine(out, cli.FormatTitle("Credit report, "+at.Format("Mon Jan 2 2006 15:04 MST")))
			writeLine(out, renderSummary(report.Summarize(statuses)))

			if len(statuses) > 0 {
				writeLine(out, "")
				writeLine(out, renderStatuses(statuses))
			}
			if alerts := report.Alerts(statuses); len(alerts) > 0 {
				writeLine(out, "")
				writeLine(out, renderAlerts(alerts))
			}
			if len(reconciliations) > 0 {
				writeLine(out, "")
				writeLine(out, renderReconciliation(reconciliations))
				if n := countDrifted(reconciliations); n > 0 {
					writeLine(out, cli.FormatWarning(fmt.Sprintf("%d account(s) drift from the ledger; run 'debt reconcile --apply'", n)))
				}
			}
			return nil
		},
	}
}

func renderSummary(s report.Summary) string {
	lines := []string{
		fmt.Sprintf("Limits:      %d", s.Limits),
		fmt.Sprintf("Total limit: %s", cli.FormatMoney(s.TotalLimit)),
		fmt.Sprintf("Used:        %s (%s)", cli.FormatMoney(s.TotalUsed), cli.FormatPercent(s.Utilization)),
		fmt.Sprintf("Available:   %s", cli.FormatMoney(s.TotalAvailable)),
		fmt.Sprintf("Status:      %s %d  %s %d  %s %d",
			cli.FormatStatus(model.StatusNormal), s.ByStatus[model.StatusNormal],
			cli.FormatStatus(model.StatusWarning), s.ByStatus[model.StatusWarning],
			cli.FormatStatus(model.StatusDanger), s.ByStatus[model.StatusDanger]),
	}
	return cli.RenderBox(cli.ChartIcon+" Summary", strings.Join(lines, "\n"))
}
