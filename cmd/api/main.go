package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"converter-service/internal/adapter/openexchange"
	"converter-service/internal/entity"
	"converter-service/internal/freshness"
	"converter-service/internal/handler"
	"converter-service/internal/metrics"
	"converter-service/internal/service"
	"converter-service/internal/store"
	"converter-service/internal/usecase"
	"converter-service/pkg/config"
	"converter-service/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log := logger.Init(cfg.Log.Level)

	log.Info("Starting app...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize storage
	backend, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer backend.close()
	log.Infof("Initialized %s storage", cfg.Storage.Driver)

	preferences, closePrefs, err := openPreferences(ctx, cfg.Redis, backend.preferences, log)
	if err != nil {
		log.Fatalf("Failed to initialize preferences: %v", err)
	}
	defer closePrefs()

	policy := freshness.NewPolicy(preferences, log,
		freshness.WithTTL(entity.CategoryRates, cfg.Cache.RatesTTL),
		freshness.WithTTL(entity.CategoryCurrencyList, cfg.Cache.CurrencyListTTL),
	)
	rateStore := store.New(ctx, backend.tables, policy, log)

	// initialize adapters
	oxrClient := openexchange.NewClient(cfg.OpenExchange.BaseURL, cfg.OpenExchange.AppID, cfg.OpenExchange.Timeout, log)
	if cfg.OpenExchange.AppID == "" {
		log.Warn("openexchange.app_id is empty, remote fetches will be rejected")
	}
	log.Info("Initialized API")

	m := metrics.NewMetrics()

	// initialize service
	rateService := service.NewRateService(oxrClient, rateStore, m, log)
	currencyListService := service.NewCurrencyListService(oxrClient, rateStore, m, log)
	log.Info("Initialized service layer")

	// initialize usecase
	currencyUsecase := usecase.NewCurrencyUsecase(rateService, currencyListService, log)
	log.Info("Initialized usecase layer")

	currencyHandler := handler.NewCurrencyHandler(currencyUsecase, log)

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestMetrics(m, log))

	// cors middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:" + cfg.App.Port, "http://127.0.0.1:" + cfg.App.Port},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	currencyHandler.Register(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// task scheduler
	c := cron.New()
	if cfg.Scheduler.RefreshSpec != "" {
		_, err = c.AddFunc(cfg.Scheduler.RefreshSpec, func() {
			log.Info("Auto refreshing rates...")
			if err := currencyUsecase.RefreshAll(context.Background()); err != nil {
				log.Errorf("Error refreshing rates: %v", err)
			} else {
				log.Info("Successfully refreshed rates")
			}
		})
		if err != nil {
			log.Fatalf("Error adding task to schedule: %v", err)
		}
		c.Start()
		log.Infof("Scheduler initialized, refreshing %s", cfg.Scheduler.RefreshSpec)
	}

	// warm the cache without forcing a remote call when it is still fresh
	go func() {
		if _, err := currencyUsecase.GetRates(ctx, entity.USD); err != nil {
			log.Errorf("Error warming rates on start: %v", err)
		}
		if _, err := currencyUsecase.GetCurrencyOptions(ctx); err != nil {
			log.Errorf("Error warming currency list on start: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on port %s...", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()
	log.Info("Got shutdown signal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error server shutdown: %v", err)
	}
	log.Info("Server stopped")

	<-c.Stop().Done()
	log.Info("Scheduler stopped")

	log.Info("Gracefully shut down")
}
