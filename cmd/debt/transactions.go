package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transactions"},
		Short:   "Record and list ledger transactions",
		Long: `Record withdrawals and payments against a credit account.

Transactions are never edited. To correct a mistake, record an offsetting
transaction.`,
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var accountID, amount, kind, category, description, at string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a withdrawal or payment",
		Example: `  debt txn add --account visa --amount 42.10 --category groceries --description "Market"
  debt txn add --account visa --amount 300 --kind payment --at 2024-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			value, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			txKind, err := parseKind(kind)
			if err != nil {
				return err
			}

			store, cfg, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			occurred, err := parseTime("at", at, cfg.Location, evaluationTime(cfg))
			if err != nil {
				return err
			}

			if err := requireAccount(ctx, store, accountID); err != nil {
				return err
			}

			amountFloat, _ := value.Float64()
			txn := model.Transaction{
				ID:          uuid.NewString(),
				AccountID:   accountID,
				Kind:        txKind,
				Amount:      amountFloat,
				Category:    strings.TrimSpace(category),
				Description: description,
				OccurredAt:  occurred,
			}
			// Manual entries are unique by ID, not by content.
			txn.Hash = txn.ID

			if _, err := store.SaveTransactions(ctx, []model.Transaction{txn}); err != nil {
				return fmt.Errorf("failed to record transaction: %w", err)
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s on %s (ID: %s)",
				txn.Kind, cli.FormatMoney(value), txn.OccurredAt.Format("2006-01-02"), txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (always positive)")
	cmd.Flags().StringVar(&kind, "kind", string(model.KindWithdrawal), "withdrawal or payment")
	cmd.Flags().StringVar(&category, "category", "", "category used by category limits")
	cmd.Flags().StringVar(&description, "description", "", "free text description")
	cmd.Flags().StringVar(&at, "at", "", "when it happened (default: now)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var accountID, category, kind, from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger transactions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cfg, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			filter := service.TransactionFilter{
				AccountID: accountID,
				Category:  category,
				Limit:     limit,
			}
			if kind != "" {
				if filter.Kind, err = parseKind(kind); err != nil {
					return err
				}
			}
			if from != "" {
				start, err := parseTime("from", from, cfg.Location, evaluationTime(cfg))
				if err != nil {
					return err
				}
				filter.StartDate = &start
			}
			if to != "" {
				end, err := parseTime("to", to, cfg.Location, evaluationTime(cfg))
				if err != nil {
					return err
				}
				filter.EndDate = &end
			}

			txns, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(txns) == 0 {
				writeLine(out, cli.InfoStyle.Render("No transactions found."))
				return nil
			}

			rows := make([][]string, 0, len(txns))
			for _, t := range txns {
				amount := fmt.Sprintf("%.2f", t.Amount)
				if t.Kind == model.KindPayment {
					amount = cli.SuccessStyle.Render("-" + amount)
				}
				rows = append(rows, []string{
					t.OccurredAt.In(cfg.Location).Format("2006-01-02 15:04"),
					t.AccountID,
					string(t.Kind),
					amount,
					t.Category,
					t.Description,
				})
			}
			writeLine(out, cli.RenderTable([]string{"DATE", "ACCOUNT", "KIND", "AMOUNT", "CATEGORY", "DESCRIPTION"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "only this account")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&kind, "kind", "", "only withdrawals or payments")
	cmd.Flags().StringVar(&from, "from", "", "on or after this date")
	cmd.Flags().StringVar(&to, "to", "", "before this date")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 for all)")

	return cmd
}
