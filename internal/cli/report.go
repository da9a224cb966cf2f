package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ledger-service/internal/ledger"
	"ledger-service/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Sales and stock reports",
}

var reportSummaryCmd = &cobra.Command{
	Use:     "summary",
	Short:   "Revenue, VAT and gross profit over a date range",
	Example: `  ledger report summary --from 2026-01-01 --to 2026-01-31 --top 5`,
	RunE:    runReportSummary,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportSummaryCmd)

	reportSummaryCmd.Flags().Int("top", 5, "Number of best selling products to show")
}

type summaryOutput struct {
	Summary     report.SalesSummary  `json:"summary"`
	TopProducts []report.ProductTotal `json:"top_products"`
	Overview    report.Overview       `json:"overview"`
}

func runReportSummary(cmd *cobra.Command, args []string) error {
	rng, err := rangeFlags(cmd)
	if err != nil {
		return err
	}
	top, _ := cmd.Flags().GetInt("top")

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		var out summaryOutput
		var err error
		if out.Summary, err = l.Reports.Summary(ctx, rng); err != nil {
			return err
		}
		if top > 0 {
			if out.TopProducts, err = l.Reports.TopProducts(ctx, rng, top); err != nil {
				return err
			}
		}
		if out.Overview, err = l.Reports.Overview(ctx); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(w, out)
		}

		s := out.Summary
		rows := [][]string{
			{"sales", strconv.Itoa(s.Count)},
			{"completed", strconv.Itoa(s.Completed)},
			{"cancelled", strconv.Itoa(s.Cancelled)},
			{"net", s.Net.StringFixed(2)},
			{"vat", s.VAT.StringFixed(2)},
			{"revenue", s.Revenue.StringFixed(2)},
			{"cost", s.Cost.StringFixed(2)},
			{"gross profit", s.GrossProfit.StringFixed(2)},
			{"deferred", s.Deferred.StringFixed(2)},
			{"stock value", out.Overview.StockValue.StringFixed(2)},
			{"outstanding debt", out.Overview.OutstandingDebt.StringFixed(2)},
			{"overdue debts", strconv.Itoa(out.Overview.OverdueDebts)},
		}
		for _, p := range s.ByPayment {
			rows = append(rows, []string{"paid by " + string(p.Method), p.Total.StringFixed(2)})
		}
		if err := printTable(w, []string{"METRIC", "VALUE"}, rows); err != nil {
			return err
		}

		if len(out.TopProducts) == 0 {
			return nil
		}
		fmt.Fprintln(w)
		topRows := make([][]string, 0, len(out.TopProducts))
		for _, p := range out.TopProducts {
			topRows = append(topRows, []string{p.SKU, p.Name, strconv.Itoa(p.Quantity), p.Revenue.StringFixed(2)})
		}
		return printTable(w, []string{"SKU", "NAME", "SOLD", "REVENUE"}, topRows)
	})
}
