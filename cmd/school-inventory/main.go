package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"school-inventory/internal/config"
	"school-inventory/internal/database"
	httpapi "school-inventory/internal/http"
	"school-inventory/internal/logger"
	"school-inventory/internal/repository"
	"school-inventory/internal/service"
	"school-inventory/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "school-inventory")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis backs the notification debounce. When it is unreachable the
	// in-process KV keeps a single instance working.
	var kv store.KV
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, using in-memory debounce store", zap.Error(err))
		kv = store.NewMemoryKV()
	} else {
		kv = store.NewRedisKV(redisClient)
	}
	pingCancel()

	// Postgres when reachable, in-memory repositories otherwise so local
	// dev works without infrastructure.
	var (
		db               *sql.DB
		equipmentRepo    repository.EquipmentRepository
		movementRepo     repository.MovementRepository
		registryRepo     repository.RegistryRepository
		historyRepo      repository.HistoryRepository
		notificationRepo repository.NotificationRepository
		lookupRepo       repository.LookupRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("database connected", zap.String("host", cfg.Database.Host))
		} else {
			log.Warn("database unavailable, falling back to in-memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		equipmentRepo = repository.NewPostgresEquipmentRepository(db)
		movementRepo = repository.NewPostgresMovementRepository(db)
		registryRepo = repository.NewPostgresRegistryRepository(db)
		historyRepo = repository.NewPostgresHistoryRepository(db)
		notificationRepo = repository.NewPostgresNotificationRepository(db)
		lookupRepo = repository.NewPostgresLookupRepository(db)
	} else {
		memEquipment := repository.NewMemoryEquipmentRepository()
		equipmentRepo = memEquipment
		movementRepo = repository.NewMemoryMovementRepository(memEquipment)
		registryRepo = repository.NewMemoryRegistryRepository()
		historyRepo = repository.NewMemoryHistoryRepository()
		notificationRepo = repository.NewMemoryNotificationRepository()
		lookupRepo = repository.NewMemoryLookupRepository()
	}

	notifier := service.NewNotifier(notificationRepo, kv, cfg.Notify.DebounceWindow, log)
	catalog := service.NewCatalogService(equipmentRepo, historyRepo, log)
	ledger := service.NewLedgerService(movementRepo, equipmentRepo, registryRepo, historyRepo, lookupRepo, notifier, log)
	assistant := service.NewAssistantClient(cfg.Assistant.WebhookURL, cfg.Assistant.Timeout, log)
	monitor := service.NewStockMonitor(catalog, notifier, cfg.LowStock.Threshold, cfg.LowStock.PollInterval, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterEquipmentRoutes(httpapi.NewEquipmentHandler(catalog, log))
	router.RegisterLedgerRoutes(httpapi.NewMovementHandler(ledger, log))
	router.RegisterNotificationRoutes(httpapi.NewNotificationHandler(notifier, log))
	router.RegisterReportRoutes(httpapi.NewReportHandler(catalog, ledger, cfg.LowStock.Threshold, log))
	router.RegisterLookupRoutes(httpapi.NewLookupHandler(lookupRepo, catalog, ledger, log))
	router.RegisterAssistantRoutes(httpapi.NewAssistantHandler(assistant, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go monitor.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		log.Error("server exited", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
