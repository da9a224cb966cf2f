package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ledger-service/internal/ledger"
	"ledger-service/internal/models"
)

var debtCmd = &cobra.Command{
	Use:   "debt",
	Short: "Follow customer debts and record repayments",
}

var debtListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every debt",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			list, err := l.Debts.All(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), list, debtHeader, debtRows(list))
		})
	},
}

var debtOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List unpaid debts past their due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			list, err := l.Debts.Overdue(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), list, debtHeader, debtRows(list))
		})
	},
}

var debtPayCmd = &cobra.Command{
	Use:     "pay <debt-id> <amount>",
	Short:   "Record a repayment against a debt",
	Example: `  ledger debt pay 3f0c8a2e-5b7d-4c1e-9a3f-2d6b8e4f1a70 15.50 --method card`,
	Args:    cobra.ExactArgs(2),
	RunE:    runDebtPay,
}

func init() {
	rootCmd.AddCommand(debtCmd)
	debtCmd.AddCommand(debtListCmd, debtOverdueCmd, debtPayCmd)

	debtPayCmd.Flags().String("method", "cash", "Payment method: cash, card or transfer")
	debtPayCmd.Flags().String("note", "", "Free text kept with the payment")
}

var debtHeader = []string{"ID", "CUSTOMER", "AMOUNT", "PAID", "REMAINING", "DUE", "STATUS"}

func debtRows(list []models.Debt) [][]string {
	rows := make([][]string, 0, len(list))
	for _, d := range list {
		due := "-"
		if d.DueDate != nil {
			due = d.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			d.DebtID.String(),
			d.CustomerID.String(),
			d.Amount.StringFixed(2),
			d.Paid.StringFixed(2),
			d.Remaining.StringFixed(2),
			due,
			string(d.Status),
		})
	}
	return rows
}

func runDebtPay(cmd *cobra.Command, args []string) error {
	method, _ := cmd.Flags().GetString("method")
	note, _ := cmd.Flags().GetString("note")

	id, err := parseUUIDArg("debt", args[0])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		d, err := l.Debts.RecordPayment(ctx, id, amount, models.PaymentMethod(method), note)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), d)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "debt %s is %s, %s remaining\n", d.DebtID, d.Status, d.Remaining.StringFixed(2))
		return nil
	})
}
