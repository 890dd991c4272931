package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/card"
	"github.com/kivubank/accounts/internal/config"
	"github.com/kivubank/accounts/internal/events"
	"github.com/kivubank/accounts/internal/infra"
	"github.com/kivubank/accounts/internal/logging"
	"github.com/kivubank/accounts/internal/movement"
	"github.com/kivubank/accounts/internal/pending"
	"github.com/kivubank/accounts/internal/server"
	"github.com/kivubank/accounts/internal/transfer"
	"github.com/kivubank/accounts/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}()

	srv, err := server.New(cfg, db, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	// Event consumers share the stores with the HTTP side; the repositories
	// are stateless over the pool.
	accountRepo := account.NewPostgresRepository(db)
	movementRepo := movement.NewPostgresRepository(db)
	cardRepo := card.NewPostgresRepository(db)
	transferRepo := transfer.NewPostgresRepository(db)
	pendingStore := pending.NewRedisStore(cache)
	bindingStore := wallet.NewRedisBindingStore(cache)
	bus := events.NewPublisher(cache)

	transferSvc := transfer.NewService(transferRepo, movementRepo, accountRepo, pendingStore, bus,
		logging.Component(logger, "transfer"))
	walletSvc := wallet.NewService(bindingStore, cardRepo, accountRepo, movementRepo, bus,
		logging.Component(logger, "wallet"))

	consumerCtx, stopConsumers := context.WithCancel(ctx)
	defer stopConsumers()

	subscribers := []*events.Subscriber{
		events.NewSubscriber(cache, logging.Component(logger, "settlement-consumer"), events.SubscriberConfig{
			Stream:   events.StreamTransactions,
			Group:    cfg.ConsumerGroup,
			Consumer: cfg.ConsumerName,
			Handler:  transfer.SettlementHandler(transferSvc),
		}),
		events.NewSubscriber(cache, logging.Component(logger, "wallet-payment-consumer"), events.SubscriberConfig{
			Stream:   events.StreamWalletPayments,
			Group:    cfg.ConsumerGroup,
			Consumer: cfg.ConsumerName,
			Handler:  wallet.PaymentHandler(walletSvc),
		}),
		events.NewSubscriber(cache, logging.Component(logger, "wallet-link-consumer"), events.SubscriberConfig{
			Stream:   events.StreamWalletLinks,
			Group:    cfg.ConsumerGroup,
			Consumer: cfg.ConsumerName,
			Handler:  wallet.LinkHandler(walletSvc),
		}),
	}
	for _, sub := range subscribers {
		go func(sub *events.Subscriber) {
			if err := sub.Run(consumerCtx); err != nil && consumerCtx.Err() == nil {
				logger.Error("subscriber stopped", "error", err)
			}
		}(sub)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	stopConsumers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
