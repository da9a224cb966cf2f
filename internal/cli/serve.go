package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ledger-service/internal/api"
	"ledger-service/internal/auth"
	"ledger-service/internal/ledger"
	"ledger-service/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over HTTP",
	Long: `Serve the ledger HTTP API until interrupted.

Required environment variables:
  JWT_SECRET - secret used to sign session tokens

The admin, seller and manager accounts take their passwords from
ADMIN_PASSWORD, SELLER_PASSWORD and MANAGER_PASSWORD.`,
	Example: `  # Serve on the default address
  JWT_SECRET=change-me ledger serve

  # Serve on another port, flushing pending writes every 30 seconds
  ledger serve --addr :9090 --flush-interval 30s`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default HTTP_ADDR)")
	serveCmd.Flags().Duration("flush-interval", time.Minute, "How often failed store writes are retried")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	c, err := loadedConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c.HTTPAddr = addr
	}
	if err := c.ValidateServer(); err != nil {
		return err
	}
	flushEvery, _ := cmd.Flags().GetDuration("flush-interval")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := ledger.Open(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	users := auth.NewDirectory(l.IDs, 0)
	if err := users.Seed(auth.SeedPasswords{
		Admin:   c.AdminPassword,
		Seller:  c.SellerPassword,
		Manager: c.ManagerPassword,
	}); err != nil {
		return err
	}
	tokens, err := auth.NewTokens(c.JWTSecret, c.TokenTTL, nil)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.HTTPAddr,
		Handler:           api.NewRouter(api.Deps{Ledger: l, Users: users, Tokens: tokens}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", c.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		log.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	if flushEvery > 0 {
		g.Go(func() error {
			retryFailedWrites(gctx, l, flushEvery)
			return nil
		})
	}

	return g.Wait()
}

// retryFailedWrites flushes the store whenever a repository reports a failed
// write, until ctx is done.
func retryFailedWrites(ctx context.Context, l *ledger.Ledger, every time.Duration) {
	log := logger.WithComponent("serve")
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			warnings := l.Warnings()
			if len(warnings) == 0 {
				continue
			}
			for _, w := range warnings {
				log.Warn().Err(w).Msg("store write failed")
			}
			if err := l.Flush(ctx); err != nil {
				log.Error().Err(err).Msg("retry flush failed")
			}
		}
	}
}
