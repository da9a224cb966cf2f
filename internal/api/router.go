// Package api exposes the commerce ledger over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ledger-service/internal/api/handlers"
	"ledger-service/internal/auth"
	"ledger-service/internal/ledger"
	"ledger-service/internal/logger"
)

type Deps struct {
	Ledger *ledger.Ledger
	Users  *auth.Directory
	Tokens *auth.Tokens
}

func NewRouter(d Deps) http.Handler {
	l := d.Ledger
	repos := l.Repos

	authH := handlers.NewAuthHandler(d.Users, d.Tokens)
	productH := handlers.NewProductHandler(repos.Products, repos.Categories, l.Inventory)
	inventoryH := handlers.NewInventoryHandler(l.Inventory, l.Inventory)
	cartH := handlers.NewCartHandler(handlers.NewCarts(), l.Sales, repos.Settings)
	saleH := handlers.NewSaleHandler(l.Sales, l.Reports)
	customerH := handlers.NewCustomerHandler(repos.Customers, l.Debts)
	debtH := handlers.NewDebtHandler(l.Debts)
	reportH := handlers.NewReportHandler(l.Reports, repos.Products, repos.Sales, repos.Debts, repos.Movements)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger.WithComponent("http")))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/auth/login", authH.Login)

	r.Group(func(r chi.Router) {
		r.Use(authenticate(d.Tokens))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productH.GetAll)
			r.Get("/{id}", productH.GetByID)
			r.Get("/category/{category}", productH.GetByCategory)
			r.With(require(auth.PermCatalog)).Post("/", productH.Create)
			r.With(require(auth.PermCatalog)).Put("/{id}", productH.Update)
			r.With(require(auth.PermCatalog)).Delete("/{id}", productH.Delete)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/low-stock", inventoryH.LowStock)
			r.Get("/out-of-stock", inventoryH.OutOfStock)
			r.Get("/{id}/movements", inventoryH.Movements)
			r.With(require(auth.PermStock)).Post("/{id}/adjust", inventoryH.Adjust)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(require(auth.PermSell))
			r.Get("/", cartH.Get)
			r.Delete("/", cartH.Clear)
			r.Post("/lines", cartH.AddLine)
			r.Put("/lines/{productID}", cartH.UpdateLine)
			r.Delete("/lines/{productID}", cartH.RemoveLine)
			r.Post("/checkout", cartH.Checkout)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", saleH.GetAll)
			r.Get("/{id}", saleH.GetByID)
			r.Get("/{id}/document", saleH.Document)
			r.With(require(auth.PermCancelSale)).Post("/{id}/cancel", saleH.Cancel)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(require(auth.PermCustomers))
			r.Get("/", customerH.GetAll)
			r.Post("/", customerH.Create)
			r.Get("/{id}", customerH.GetByID)
			r.Get("/{id}/debts", customerH.Debts)
		})

		r.Route("/debts", func(r chi.Router) {
			r.Use(require(auth.PermDebtPayments))
			r.Get("/", debtH.GetAll)
			r.Get("/overdue", debtH.Overdue)
			r.Get("/{id}", debtH.GetByID)
			r.Post("/{id}/payments", debtH.RecordPayment)
			r.With(require(auth.PermDebts)).Post("/", debtH.Open)
		})

		r.Group(func(r chi.Router) {
			r.Use(require(auth.PermReports))
			r.Get("/reports/summary", reportH.Summary)
			r.Get("/reports/top-products", reportH.TopProducts)
			r.Get("/reports/overview", reportH.Overview)
			r.Get("/export/{kind}", reportH.Export)
		})
	})

	return r
}
