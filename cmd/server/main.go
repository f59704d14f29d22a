package main

import (
	"context"
	"net/http"

	webAdapter "relief-ledger/internal/adapters/web"
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

	var publisher events.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg, logger)
		if err != nil {
			logger.Fatal("kafka producer", zap.Error(err))
		}
		publisher = kafkaPublisher
		logger.Info("kafka producer connected",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_inventory", cfg.KafkaTopicInventory),
			zap.String("topic_alerts", cfg.KafkaTopicAlerts))
	} else {
		publisher = events.NewMemoryPublisher()
		logger.Warn("KAFKA_BROKERS is not set, events stay in process")
	}
	defer publisher.Close()

	store := core.NewInventoryStore(pool)
	ledger := core.NewTransactionLedger(pool)
	departments := core.NewDepartmentService(pool)
	alerts := core.NewAlertService(pool, cfg.ExpiryHorizonDays)
	coordinator := core.NewLedgerCoordinator(pool, store, ledger, departments, publisher, logger)

	svc := app.NewAppService(store, ledger, coordinator, alerts, departments, cfg.ExpiryHorizonDays)
	handler := webAdapter.NewHandler(svc, logger, cfg.AllowedOrigins)

	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
