package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ledger-service/internal/ledger"
	"ledger-service/internal/models"
	"ledger-service/internal/report"
)

var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "List and cancel sales",
}

var saleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales, optionally within a date range",
	Example: `  ledger sale list --from 2026-01-01 --to 2026-01-31`,
	RunE: runSaleList,
}

var saleCancelCmd = &cobra.Command{
	Use:   "cancel <sale-id>",
	Short: "Cancel a completed sale and put its goods back in stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUIDArg("sale", args[0])
		if err != nil {
			return err
		}
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			sale, err := l.Sales.Cancel(ctx, id, cliActor)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), sale)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", sale.InvoiceNumber)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(saleCmd)
	saleCmd.AddCommand(saleListCmd, saleCancelCmd)

	for _, c := range []*cobra.Command{saleListCmd, reportSummaryCmd} {
		c.Flags().String("from", "", "First day, YYYY-MM-DD")
		c.Flags().String("to", "", "Last day, YYYY-MM-DD, inclusive")
	}
}

func rangeFlags(cmd *cobra.Command) (report.Range, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	return report.ParseRange(from, to, nil)
}

func runSaleList(cmd *cobra.Command, args []string) error {
	rng, err := rangeFlags(cmd)
	if err != nil {
		return err
	}

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		all, err := l.Sales.List(ctx)
		if err != nil {
			return err
		}
		list := report.FilterSales(all, rng)
		return emit(cmd.OutOrStdout(), list, saleHeader, saleRows(list))
	})
}

var saleHeader = []string{"INVOICE", "DATE", "TOTAL", "PAID", "METHOD", "STATUS", "ID"}

func saleRows(list []models.Sale) [][]string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.InvoiceNumber,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.Total.StringFixed(2),
			s.AmountPaid.StringFixed(2),
			string(s.PaymentMethod),
			string(s.Status),
			s.SaleID.String(),
		})
	}
	return rows
}
