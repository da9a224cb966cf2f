package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ledger-service/internal/export"
	"ledger-service/internal/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export <products|sales|debts|movements>",
	Short: "Export one table as delimited text",
	Example: `  ledger export sales --delimiter ';' --output sales.csv
  ledger export movements --delimiter tab`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("delimiter", ",", "Field delimiter: a single character, tab or semicolon")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	kind, err := export.ParseKind(args[0])
	if err != nil {
		return err
	}
	delimStr, _ := cmd.Flags().GetString("delimiter")
	delimiter, err := export.ParseDelimiter(delimStr)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		var out io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()
			out = f
		}

		w, err := export.NewWriter(out, delimiter)
		if err != nil {
			return err
		}
		return writeExport(ctx, l, w, kind)
	})
}

func writeExport(ctx context.Context, l *ledger.Ledger, w *export.Writer, kind export.Kind) error {
	switch kind {
	case export.KindProducts:
		products, err := l.Repos.Products.GetAll(ctx)
		if err != nil {
			return err
		}
		return w.Products(products)
	case export.KindSales:
		sales, err := l.Repos.Sales.GetAll(ctx)
		if err != nil {
			return err
		}
		return w.Sales(sales)
	case export.KindDebts:
		debts, err := l.Repos.Debts.GetAll(ctx)
		if err != nil {
			return err
		}
		return w.Debts(debts)
	case export.KindMovements:
		movements, err := l.Repos.Movements.GetAll(ctx)
		if err != nil {
			return err
		}
		return w.Movements(movements)
	}
	return fmt.Errorf("unknown export kind %q", kind)
}
