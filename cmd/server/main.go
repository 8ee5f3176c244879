package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	webAdapter "arms-backoffice/internal/adapters/web"
	"arms-backoffice/internal/app"
	"arms-backoffice/internal/config"
	"arms-backoffice/internal/core"
	"arms-backoffice/internal/db"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is not set; production runs will be rejected")
	}

	ledger := core.NewLedger(pool)
	signer := core.NewUnitTokenSigner(cfg.JWTSecretKey)
	warehouseService := core.NewWarehouseService(pool)
	productService := core.NewProductService(pool, warehouseService)
	productionService := core.NewProductionService(pool, signer, ledger, warehouseService)
	contractService := core.NewContractService(pool, ledger, warehouseService)
	customerService := core.NewCustomerService(pool)
	historyService := core.NewHistoryService(pool)

	svc := app.NewAppService(warehouseService, productService, productionService,
		contractService, customerService, ledger, historyService)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, log)

	log.WithField("port", cfg.ServerPort).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
