package cli

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ledger-service/internal/catalog"
	"ledger-service/internal/ledger"
	"ledger-service/internal/models"
	"ledger-service/internal/repository"
	"ledger-service/internal/sales"
)

//go:embed demo_catalog.yaml
var demoCatalog []byte

const demoCustomerEmail = "ada@example.com"

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Seed a sample catalog and ring up two sales",
	Long: `Seed the configured store with a small sample catalog and a customer,
then commit one cash sale and one partly deferred sale.

Running it again reuses the catalog and the customer and adds two more sales.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *ledger.Ledger) error {
			return runDemo(ctx, l, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context, l *ledger.Ledger, w io.Writer) error {
	c, err := catalog.Parse(demoCatalog)
	if err != nil {
		return err
	}
	res, err := l.Catalog.Import(ctx, c, cliActor)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "catalog: %d new products, %d already present\n", res.Products, len(res.Skipped))

	customer, err := demoCustomer(ctx, l)
	if err != nil {
		return err
	}

	settings, err := l.Repos.Settings.Get(ctx)
	if err != nil {
		return err
	}

	cash, err := demoSale(ctx, l, settings, map[string]int{"DEMO-TEA": 2, "DEMO-SOAP": 1}, func(total decimal.Decimal) sales.CommitRequest {
		return sales.CommitRequest{
			PaymentMethod: models.PaymentCash,
			AmountPaid:    total.Ceil(),
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s paid cash, %s change\n", cash.InvoiceNumber, cash.Total.StringFixed(2), cash.ChangeDue.StringFixed(2))

	deferred, err := demoSale(ctx, l, settings, map[string]int{"DEMO-RICE": 4}, func(total decimal.Decimal) sales.CommitRequest {
		due := l.Now().AddDate(0, 0, 30)
		return sales.CommitRequest{
			CustomerID:    &customer.CustomerID,
			PaymentMethod: models.PaymentMixed,
			AmountPaid:    total.Div(decimal.NewFromInt(2)).Round(2),
			DueDate:       &due,
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s, %s paid, rest owed by %s\n", deferred.InvoiceNumber, deferred.Total.StringFixed(2), deferred.AmountPaid.StringFixed(2), customer.Name)
	return nil
}

func demoCustomer(ctx context.Context, l *ledger.Ledger) (*models.Customer, error) {
	existing, err := l.Repos.Customers.GetByEmail(ctx, demoCustomerEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	c := models.Customer{
		Name:        "Ada Lovelace",
		Email:       demoCustomerEmail,
		PhoneNumber: "+442071234567",
	}
	if err := l.Repos.Customers.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// demoSale fills a cart by SKU and commits it with the payment built by pay.
func demoSale(ctx context.Context, l *ledger.Ledger, settings models.Settings, skus map[string]int, pay func(total decimal.Decimal) sales.CommitRequest) (*models.Sale, error) {
	cart := sales.NewCart()
	for sku, qty := range skus {
		p, err := l.Repos.Products.GetBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if err := l.Sales.AddToCart(ctx, cart, p.ProductID, qty); err != nil {
			return nil, fmt.Errorf("%s: %w", sku, err)
		}
	}

	totals := cart.Totals(settings.VATRate)
	req := pay(totals.Total)
	req.Lines = cart.Lines()
	req.SellerID = cliActor
	req.VATRate = settings.VATRate
	return l.Sales.Commit(ctx, req)
}
