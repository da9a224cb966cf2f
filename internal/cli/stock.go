package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ledger-service/internal/ledger"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Adjust stock and list products that need reordering",
}

var stockAdjustCmd = &cobra.Command{
	Use:   "adjust <sku> <delta>",
	Short: "Apply a signed quantity change to a product",
	Example: `  ledger stock adjust TEA-01 12 --reason delivery

  # Negative deltas go after -- so they are not read as flags
  ledger stock adjust --reason breakage -- TEA-01 -1`,
	Args: cobra.ExactArgs(2),
	RunE: runStockAdjust,
}

var stockLowCmd = &cobra.Command{
	Use:   "low",
	Short: "List products at or below their minimum quantity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			products, err := l.Inventory.LowStock(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), products, productHeader, productRows(products))
		})
	},
}

var stockOutCmd = &cobra.Command{
	Use:   "out",
	Short: "List products with nothing left",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			products, err := l.Inventory.OutOfStock(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), products, productHeader, productRows(products))
		})
	},
}

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.AddCommand(stockAdjustCmd, stockLowCmd, stockOutCmd)

	stockAdjustCmd.Flags().String("reason", "manual adjustment", "Reason recorded on the movement")
}

func runStockAdjust(cmd *cobra.Command, args []string) error {
	reason, _ := cmd.Flags().GetString("reason")

	var delta int
	if _, err := fmt.Sscanf(args[1], "%d", &delta); err != nil {
		return fmt.Errorf("invalid delta %q: %w", args[1], err)
	}

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		p, err := l.Repos.Products.GetBySKU(ctx, args[0])
		if err != nil {
			return err
		}

		m, err := l.Inventory.Adjust(ctx, p.ProductID, delta, reason, cliActor)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(cmd.OutOrStdout(), m)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %d (%s), now %d\n", p.SKU, m.Direction, m.Quantity, m.Reason, p.Quantity+m.Delta())
		return nil
	})
}
