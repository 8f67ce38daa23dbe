package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/Veraticus/debt-manager/internal/usage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func limitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "limits",
		Aliases: []string{"limit"},
		Short:   "Manage credit limits",
		Long: `Define spending limits and check how much of each has been used.

A limit covers a window that starts at --start. With --end the window runs
through that whole day; otherwise --type decides where it ends: daily and
weekly extend 24 hours and 7 days past now, monthly and yearly run to the
next calendar month or year, and custom stops at now.`,
	}

	cmd.AddCommand(addLimitCmd())
	cmd.AddCommand(listLimitsCmd())
	cmd.AddCommand(deleteLimitCmd())
	cmd.AddCommand(limitStatusCmd())

	return cmd
}

func addLimitCmd() *cobra.Command {
	var (
		id        string
		amount    string
		limitType string
		start     string
		end       string
		category  string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a credit limit",
		Args:  cobra.ExactArgs(1),
		Example: `  debt limits add Groceries --amount 600 --type monthly --start 2024-01-01 --category groceries
  debt limits add "Trip to Lisbon" --amount 2000 --type custom --start 2024-05-01 --end 2024-05-14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			limit, err := buildLimit(cfg.Location, limitInput{
				id: id, name: args[0], amount: amount, limitType: limitType,
				start: start, end: end, category: category, threshold: threshold,
			})
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateLimit(ctx, limit); err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return common.NewUserError(fmt.Sprintf("limit %q already exists", limit.ID), err)
				}
				return fmt.Errorf("failed to create limit: %w", err)
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s limit %q of %s (ID: %s)",
				limit.LimitType, limit.Name, cli.FormatMoney(limit.LimitAmount), limit.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "limit ID (generated when empty)")
	cmd.Flags().StringVar(&amount, "amount", "", "limit amount")
	cmd.Flags().StringVar(&limitType, "type", string(model.LimitMonthly), "limit type (daily, weekly, monthly, yearly, custom)")
	cmd.Flags().StringVar(&start, "start", "", "first day of the limit (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day of the limit, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "only count transactions in this category")
	cmd.Flags().Float64Var(&threshold, "alert", model.DefaultAlertThreshold, "alert threshold percentage")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

type limitInput struct {
	id        string
	name      string
	amount    string
	limitType string
	start     string
	end       string
	category  string
	threshold float64
}

// buildLimit validates flag input and assembles a limit. Dates are read in
// loc; the end date must not precede the start date.
func buildLimit(loc *time.Location, in limitInput) (*model.CreditLimit, error) {
	amount, err := parseAmount("amount", in.amount)
	if err != nil {
		return nil, err
	}
	limitType, err := parseLimitType(in.limitType)
	if err != nil {
		return nil, err
	}
	if in.threshold < 0 {
		return nil, common.NewUserError("--alert cannot be negative", nil)
	}

	limit := &model.CreditLimit{
		ID:             in.id,
		Name:           strings.TrimSpace(in.name),
		LimitAmount:    amount,
		LimitType:      limitType,
		Category:       strings.TrimSpace(in.category),
		AlertThreshold: in.threshold,
	}
	if limit.ID == "" {
		limit.ID = uuid.NewString()
	}

	if limit.StartDate, err = usage.ParseLimitDate("start", in.start, loc); err != nil {
		return nil, common.NewUserError("invalid --start", err)
	}
	if in.end != "" {
		end, err := usage.ParseLimitDate("end", in.end, loc)
		if err != nil {
			return nil, common.NewUserError("invalid --end", err)
		}
		if end.Before(limit.StartDate) {
			return nil, common.NewUserError("--end is before --start", nil)
		}
		limit.EndDate = &end
	}

	if err := usage.ValidateLimit(limit); err != nil {
		return nil, common.NewUserError("invalid limit", err)
	}
	return limit, nil
}

func listLimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List credit limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			limits, err := store.GetLimits(ctx)
			if err != nil {
				return fmt.Errorf("failed to get limits: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(limits) == 0 {
				writeLine(out, cli.InfoStyle.Render("No limits found. Use 'debt limits add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(limits))
			for _, l := range limits {
				end := cli.SubtleStyle.Render("(rolling)")
				if l.EndDate != nil {
					end = l.EndDate.Format("2006-01-02")
				}
				category := l.Category
				if category == "" {
					category = cli.SubtleStyle.Render("(all)")
				}
				rows = append(rows, []string{
					l.ID,
					l.Name,
					string(l.LimitType),
					cli.FormatMoney(l.LimitAmount),
					l.StartDate.Format("2006-01-02"),
					end,
					category,
					fmt.Sprintf("%.0f%%", l.Threshold()),
				})
			}

			writeLine(out, cli.RenderTable([]string{"ID", "NAME", "TYPE", "AMOUNT", "START", "END", "CATEGORY", "ALERT"}, rows))
			return nil
		},
	}
}

func deleteLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credit limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteLimit(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("no limit with ID %q", args[0]), err)
				}
				return fmt.Errorf("failed to delete limit: %w", err)
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Deleted limit "+args[0]))
			return nil
		},
	}
}

func limitStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current usage of every limit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cfg, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			statuses, err := report.NewReporter(store).LimitStatuses(ctx, evaluationTime(cfg))
			if err != nil {
				return limitError(err)
			}

			out := cmd.OutOrStdout()
			if len(statuses) == 0 {
				writeLine(out, cli.InfoStyle.Render("No limits found. Use 'debt limits add' to create one."))
				return nil
			}

			writeLine(out, renderStatuses(statuses))
			if alerts := report.Alerts(statuses); len(alerts) > 0 {
				writeLine(out, "")
				writeLine(out, renderAlerts(alerts))
			}
			return nil
		},
	}
}

// limitError turns a structurally invalid stored limit into a user error.
func limitError(err error) error {
	var invalid *usage.InvalidLimitError
	if errors.As(err, &invalid) {
		return common.NewUserError("a stored limit is invalid; fix or delete it with 'debt limits'", err)
	}
	return err
}

func renderStatuses(statuses []report.LimitStatus) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		window := s.Window.Start.Format("2006-01-02") + " → " + s.Window.End.Format("2006-01-02 15:04")
		if s.Window.Empty() {
			window = cli.SubtleStyle.Render("(empty)")
		}
		rows = append(rows, []string{
			s.Limit.Name,
			string(s.Limit.LimitType),
			window,
			cli.FormatMoney(s.Usage.UsedAmount),
			cli.FormatMoney(s.Limit.LimitAmount),
			cli.FormatMoney(s.Usage.AvailableAmount),
			cli.FormatPercent(s.Usage.UtilizationPercentage),
			cli.FormatStatus(s.Usage.Status),
		})
	}
	return cli.RenderTable([]string{"LIMIT", "TYPE", "WINDOW", "USED", "AMOUNT", "AVAILABLE", "UTIL", "STATUS"}, rows)
}

func renderAlerts(alerts []report.LimitStatus) string {
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		msg := fmt.Sprintf("%s is at %s of %s", a.Limit.Name,
			cli.FormatPercent(a.Usage.UtilizationPercentage), cli.FormatMoney(a.Limit.LimitAmount))
		if a.Usage.Status == model.StatusDanger {
			lines = append(lines, cli.FormatError(msg))
		} else {
			lines = append(lines, cli.FormatWarning(msg))
		}
	}
	return strings.Join(lines, "\n")
}
