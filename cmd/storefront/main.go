package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/infra/kv"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogmem "github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/gateway"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/orderclient"
	"github.com/dwikikusuma/storefront/internal/serviceability"
	"github.com/dwikikusuma/storefront/internal/storefront/httpapi"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Catalog
	catalogRepo, err := catalogmem.NewRepoFromFile(ctx, cfg.CatalogSeedPath)
	if err != nil {
		log.Error("catalog seed failed", slog.Any("err", err), slog.String("path", cfg.CatalogSeedPath))
		os.Exit(1)
	}
	catalogSvc := catalogapp.NewService(catalogRepo)

	// Serviceability
	shipping, err := serviceability.NewCheckerFromFile(cfg.PincodePath)
	if err != nil {
		log.Error("pincode table load failed", slog.Any("err", err), slog.String("path", cfg.PincodePath))
		os.Exit(1)
	}

	// Cart
	if err := kv.Dir(cfg.CartPath); err != nil {
		log.Error("cart dir create failed", slog.Any("err", err))
		os.Exit(1)
	}
	notifier := adapter.LogNotifier{Log: log}
	cartStore := cartapp.NewStore(ctx, kv.NewFile(cfg.CartPath), notifier, log)

	// Checkout
	checkoutSvc := checkoutapp.NewService(checkoutapp.Deps{
		Cart:     adapter.NewCartStoreAdapter(cartStore),
		Catalog:  adapter.NewCatalogServiceReader(catalogSvc),
		Gateway:  gateway.NewSimulated(cfg.PaymentApproveRate, time.Duration(cfg.PaymentDelayMS)*time.Millisecond),
		Orders:   orderclient.New(cfg.OrderServiceURL, nil),
		Auth:     adapter.StaticAuthn{UserID: cfg.UserID, Token: cfg.AuthToken},
		Nav:      adapter.LogNavigator{Log: log},
		Notify:   notifier,
		Shipping: adapter.ShippingChecker{Checker: shipping},
		Log:      log,
	})

	api := httpapi.NewServer(cartStore, catalogSvc, checkoutSvc, shipping, log)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
