package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arbitrage/internal/api"
	"arbitrage/internal/catalog"
	"arbitrage/internal/config"
	"arbitrage/internal/fetch"
	"arbitrage/internal/repository"
	"arbitrage/internal/scanner"
	"arbitrage/internal/service"
	"arbitrage/internal/venueclient"
	"arbitrage/internal/websocket"
	"arbitrage/pkg/utils"

	_ "github.com/lib/pq"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Инициализация репозиториев
	credentialRepo, err := repository.NewCredentialRepository(db, []byte(cfg.Security.EncryptionKey))
	if err != nil {
		log.Fatalf("Failed to init credential repository: %v", err)
	}
	notificationRepo := repository.NewNotificationRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	scanRunRepo := repository.NewScanRunRepository(db)
	blacklistRepo := repository.NewBlacklistRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Анонимные клиенты площадок для публичных market-data эндпоинтов
	// (C1/C2/C7). Каталог, фетчер и сканер работают только с ними -
	// авторизованные соединения VenueService сюда не подставляются.
	limiter := venueclient.NewDefaultLimiter()
	clients := make(map[string]venueclient.VenueClient, len(venueclient.SupportedVenues))
	for _, name := range venueclient.SupportedVenues {
		client, err := venueclient.New(name, venueclient.Credentials{}, limiter)
		if err != nil {
			log.Fatalf("Failed to init venue client %s: %v", name, err)
		}
		clients[name] = client
	}

	cat := catalog.NewCatalog(clients, cfg.Scanner.CollectionsDir, false, logger)
	fetcher := fetch.NewFetcher(logger)
	sc := scanner.NewScanner(clients, fetcher, logger)
	superScanner := scanner.NewSuperScannerWithTimings(
		sc, logger,
		cfg.Scanner.GateInterval,
		cfg.Scanner.RateLimitBackoff,
		cfg.Scanner.StaggerInterval,
	)

	// Инициализация сервисов
	venueService := service.NewVenueService(credentialRepo, limiter)
	settingsService := service.NewSettingsService(settingsRepo)
	statsService := service.NewStatsService(statsRepo, scanRunRepo)
	notificationService := service.NewNotificationService(notificationRepo, settingsRepo)
	blacklistService := service.NewBlacklistService(blacklistRepo)
	cat.SetBlacklist(blacklistRepo)

	scanService := service.NewScanService(
		clients,
		fetcher,
		cat,
		sc,
		superScanner,
		logger,
		statsService,
		notificationService,
	)

	// WebSocket hub для живого потока возможностей (C9)
	hub := websocket.NewHub()
	go hub.Run()

	scanService.SetWebSocketHub(hub)
	notificationService.SetWebSocketHub(hub)
	statsService.SetWebSocketHub(hub)

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		VenueService:        venueService,
		ScanService:         scanService,
		Catalog:             cat,
		StatsService:        statsService,
		SettingsService:     settingsService,
		NotificationService: notificationService,
		BlacklistService:    blacklistService,
		Hub:                 hub,
	}

	// Настройка HTTP роутера
	router := api.SetupRoutes(deps)

	// HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if cfg.Server.UseHTTPS {
			if err := server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed: %v", err)
			}
		} else {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed: %v", err)
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Закрываем авторизованные соединения с площадками
	if err := venueService.Close(); err != nil {
		log.Printf("Error closing venue connections: %v", err)
	}
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
