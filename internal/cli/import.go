package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ledger-service/internal/catalog"
	"ledger-service/internal/ledger"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Load categories, suppliers and products from a YAML catalog",
	Long: `Load a YAML catalog into the store.

Categories and suppliers are matched by name and created when missing.
Products whose SKU already exists are skipped, so a catalog can be imported
more than once.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	c, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		res, err := l.Catalog.Import(ctx, c, cliActor)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), res)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d categories, %d suppliers, %d products\n",
			res.Categories, res.Suppliers, res.Products)
		if len(res.Skipped) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped existing: %s\n", strings.Join(res.Skipped, ", "))
		}
		return nil
	})
}
