package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/trackdeal/settlements/internal/auth"
	"github.com/trackdeal/settlements/internal/config"
	"github.com/trackdeal/settlements/internal/db"
	"github.com/trackdeal/settlements/internal/export"
	httphandler "github.com/trackdeal/settlements/internal/http"
	"github.com/trackdeal/settlements/internal/http/middleware"
	"github.com/trackdeal/settlements/internal/logger"
	"github.com/trackdeal/settlements/internal/money"
	"github.com/trackdeal/settlements/internal/notify"
	"github.com/trackdeal/settlements/internal/payment"
	"github.com/trackdeal/settlements/internal/repository"
	"github.com/trackdeal/settlements/internal/scheduler"
	"github.com/trackdeal/settlements/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	store := service.WrapStore(repository.NewStore(database))
	rules := money.Rules{
		TaxRatePercent: decimal.NewFromInt(int64(cfg.Settlement.TaxRatePercent)),
		CutoffDay:      cfg.Settlement.TaxCutoffDay,
	}

	publisher := notify.NewLogPublisher(log)
	gateway := payment.NewLinkGateway(cfg.Payment.BaseURL)

	terminations := service.NewTerminationService(store, gateway, publisher, rules, log)
	settlements := service.NewSettlementService(store, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dueScheduler := scheduler.New(settlements, cfg.Settlement.SchedulerInterval, log)
	go dueScheduler.Run(ctx)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		terminations,
		settlements,
		export.NewExcelGenerator(),
		export.NewPDFGenerator(),
		export.FileName,
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting settlements service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
