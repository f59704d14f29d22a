package main

import (
	"context"
	"os"

	"relief-ledger/internal/adapters/cli"
	"relief-ledger/internal/app"
	"relief-ledger/internal/config"
	"relief-ledger/internal/core"
	"relief-ledger/internal/db"
	"relief-ledger/internal/events"
	"relief-ledger/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Environment)
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	// One-shot commands publish nothing downstream, so the in-process
	// publisher is enough here.
	publisher := events.NewMemoryPublisher()

	store := core.NewInventoryStore(pool)
	ledger := core.NewTransactionLedger(pool)
	departments := core.NewDepartmentService(pool)
	alerts := core.NewAlertService(pool, cfg.ExpiryHorizonDays)
	coordinator := core.NewLedgerCoordinator(pool, store, ledger, departments, publisher, logger)

	svc := app.NewAppService(store, ledger, coordinator, alerts, departments, cfg.ExpiryHorizonDays)
	cli.Run(ctx, svc, os.Args[1:])
}
