// README: Entry point; loads config, wires services, starts the storefront HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/config"
	httptransport "storefront/internal/http"
	"storefront/internal/infra"
	"storefront/internal/logging"
	"storefront/internal/modules/cart"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
	"storefront/internal/modules/selection"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}
	if cfg.Firebase.ProjectID == "" {
		log.Warn("STOREFRONT_FIREBASE_PROJECT_ID not set; admin API disabled")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if cfg.DB.Migrate {
		if err := infra.Migrate(ctx, dbPool); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	redisClient, err := infra.NewRedis(ctx, infra.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	calc, err := pricing.NewCalculator(cfg.Pricing.GSTRate)
	if err != nil {
		return err
	}

	catalogSvc := catalog.NewService(catalog.NewStore(dbPool), log.Named("catalog"))
	pricingSvc := pricing.NewService(catalogSvc, calc, log.Named("pricing"))
	selectionSvc := selection.NewService(
		selection.NewStore(redisClient, cfg.Session.SelectionTTL),
		catalogSvc, pricingSvc, log.Named("selection"),
	)
	cartSvc := cart.NewService(
		cart.NewStore(redisClient, cfg.Session.CartTTL),
		catalogSvc, pricingSvc, selectionSvc, log.Named("cart"),
	)

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Catalog:   catalogSvc,
		Pricing:   pricingSvc,
		Selection: selectionSvc,
		Cart:      cartSvc,
		Verifier:  verifier,
		Log:       log.Named("http"),
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("gst_rate", calc.TaxRate().String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
