package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacebabiez/backend/internal/config"
	"github.com/spacebabiez/backend/internal/db"
	"github.com/spacebabiez/backend/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	walletRepo := repositories.NewWalletRepo(pool)

	log.Info("worker started")

	nonceTicker := time.NewTicker(10 * time.Minute)
	idleTicker := time.NewTicker(1 * time.Hour)
	defer nonceTicker.Stop()
	defer idleTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-nonceTicker.C:
			pruneNonces(ctx, walletRepo, log)
		case <-idleTicker.C:
			closeIdleConnections(ctx, walletRepo, cfg, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func pruneNonces(ctx context.Context, walletRepo *repositories.WalletRepo, log *zap.Logger) {
	n, err := walletRepo.PruneExpiredNonces(ctx)
	if err != nil {
		log.Error("failed to prune challenge nonces", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("pruned challenge nonces", zap.Int64("count", n))
	}
}

func closeIdleConnections(ctx context.Context, walletRepo *repositories.WalletRepo, cfg *config.Config, log *zap.Logger) {
	n, err := walletRepo.DeactivateIdle(ctx, cfg.SessionIdleWindow)
	if err != nil {
		log.Error("failed to close idle wallet connections", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("closed idle wallet connections", zap.Int64("count", n))
	}
}
