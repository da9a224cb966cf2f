package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ledger-service/internal/ledger"
	"ledger-service/internal/models"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "List and add catalog products",
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every product with its stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			products, err := l.Repos.Products.GetAll(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), products, productHeader, productRows(products))
		})
	},
}

var productAddCmd = &cobra.Command{
	Use:   "add <sku> <name>",
	Short: "Add a product to the catalog",
	Example: `  ledger product add TEA-01 "Green tea 100g" --price 4.50 --cost 2.10 --quantity 24 --min 5
  ledger product add SOAP "Olive soap" --price 3 --category Hygiene`,
	Args: cobra.ExactArgs(2),
	RunE: runProductAdd,
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productListCmd, productAddCmd)

	productAddCmd.Flags().String("price", "0", "Sale price")
	productAddCmd.Flags().String("cost", "0", "Purchase price")
	productAddCmd.Flags().Int("quantity", 0, "Initial stock")
	productAddCmd.Flags().Int("min", 0, "Low stock threshold")
	productAddCmd.Flags().String("category", "", "Category name")
}

var productHeader = []string{"SKU", "NAME", "PRICE", "QTY", "MIN", "STATUS"}

func productRows(products []models.Product) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		status := "ok"
		switch {
		case p.IsOutOfStock():
			status = "out"
		case p.IsLowStock():
			status = "low"
		}
		rows = append(rows, []string{
			p.SKU,
			p.Name,
			p.SalePrice.StringFixed(2),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.MinQuantity),
			status,
		})
	}
	return rows
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	priceStr, _ := cmd.Flags().GetString("price")
	costStr, _ := cmd.Flags().GetString("cost")
	quantity, _ := cmd.Flags().GetInt("quantity")
	minQty, _ := cmd.Flags().GetInt("min")
	categoryName, _ := cmd.Flags().GetString("category")

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", priceStr, err)
	}
	cost, err := decimal.NewFromString(costStr)
	if err != nil {
		return fmt.Errorf("invalid cost %q: %w", costStr, err)
	}
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}

	return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
		p := models.Product{
			SKU:           args[0],
			Name:          args[1],
			SalePrice:     price,
			PurchasePrice: cost,
			MinQuantity:   minQty,
		}
		if categoryName != "" {
			c, err := l.Repos.Categories.GetByName(ctx, categoryName)
			if err != nil {
				return err
			}
			p.CategoryID = &c.CategoryID
		}

		if err := l.Repos.Products.Create(ctx, &p); err != nil {
			return err
		}
		if quantity > 0 {
			if _, err := l.Inventory.Adjust(ctx, p.ProductID, quantity, "initial stock", cliActor); err != nil {
				return err
			}
			p.Quantity = quantity
		}

		if jsonOut {
			return printJSON(cmd.OutOrStdout(), p)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) with %d in stock\n", p.SKU, p.ProductID, p.Quantity)
		return nil
	})
}
