package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/usage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage credit accounts",
		Long:    `Add, list and delete the credit accounts transactions are booked against.`,
	}

	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func addAccountCmd() *cobra.Command {
	var id, creditLimit, used string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a credit account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			limitAmount, err := parseAmount("limit", creditLimit)
			if err != nil {
				return err
			}
			usedAmount, err := parseAmount("used", used)
			if err != nil {
				return err
			}
			if id == "" {
				id = uuid.NewString()
			}

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.CreditAccount{
				ID:          id,
				Name:        args[0],
				CreditLimit: limitAmount,
				UsedAmount:  usedAmount,
			}
			if err := store.CreateAccount(ctx, account); err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return common.NewUserError(fmt.Sprintf("account %q already exists", id), err)
				}
				return fmt.Errorf("failed to create account: %w", err)
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created account %q (ID: %s, limit %s)",
				account.Name, account.ID, cli.FormatMoney(account.CreditLimit))))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "account ID (generated when empty)")
	cmd.Flags().StringVar(&creditLimit, "limit", "", "credit limit of the account")
	cmd.Flags().StringVar(&used, "used", "0", "amount already used")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List credit accounts with usage derived from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshot, err := store.LoadSnapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(snapshot.Accounts) == 0 {
				writeLine(out, cli.InfoStyle.Render("No accounts found. Use 'debt accounts add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(snapshot.Accounts))
			for _, account := range snapshot.Accounts {
				used := usage.DeriveAccountUsage(account.ID, snapshot.Transactions)
				rows = append(rows, []string{
					account.ID,
					account.Name,
					cli.FormatMoney(account.CreditLimit),
					cli.FormatMoney(used),
					cli.FormatMoney(usage.AvailableCredit(account.CreditLimit, used)),
					cli.FormatPercent(usage.Utilization(used, account.CreditLimit)),
				})
			}

			writeLine(out, cli.RenderTable([]string{"ID", "NAME", "LIMIT", "USED", "AVAILABLE", "UTIL"}, rows))
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credit account",
		Long:  `Delete a credit account. Its ledger transactions are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteAccount(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("no account with ID %q", args[0]), err)
				}
				return fmt.Errorf("failed to delete account: %w", err)
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Deleted account "+args[0]))
			return nil
		},
	}
}
