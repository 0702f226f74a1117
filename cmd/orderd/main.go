package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	ordermem "github.com/dwikikusuma/storefront/internal/order/infra/memory"
	"github.com/dwikikusuma/storefront/internal/order/httpapi"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "orderd", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	repo := ordermem.NewRepo()
	svc := orderapp.NewService(repo)
	api := httpapi.NewServer(svc, loadTokens(), log)

	addr := fmt.Sprintf(":%d", cfg.OrderHTTPPort)
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

// loadTokens reads the token table from ORDER_TOKENS, formatted as
// token=userID pairs separated by commas.
func loadTokens() httpapi.StaticTokens {
	tokens := httpapi.StaticTokens{}
	for _, pair := range strings.Split(os.Getenv("ORDER_TOKENS"), ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && token != "" && user != "" {
			tokens[token] = user
		}
	}
	return tokens
}
