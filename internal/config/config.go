package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	Scanner  ScannerConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	JWTSecret      string
	EncryptionKey  string
	SessionTimeout int
}

// ScannerConfig - настройки сканера межбиржевого арбитража
type ScannerConfig struct {
	// Каталог и граф
	CollectionsDir   string // каталог с collections.json / singularly_available_markets.json
	DepthMode        bool   // учитывать глубину (объём) рынка; вне config поле не используется - depth-режим скана задаёт depth_mode запроса
	FeeFetchRetries  int           // число попыток загрузки комиссий (C3); вне config поле не используется
	FeeFetchInterval time.Duration // пауза между этими попытками; вне config поле не используется

	// SuperScanner (C7) - темп опроса и кооперативный back-off
	GateInterval     time.Duration // минимальный интервал между проверками готовности венью
	RateLimitBackoff time.Duration // пауза перед повторной попыткой после rate-limit
	StaggerInterval  time.Duration // задержка между стартом опроса последовательных символов

	// Периодический полный скан коллекции
	ScanInterval time.Duration
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "arbitrage"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
			EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
			SessionTimeout: getEnvAsInt("SESSION_TIMEOUT", 3600),
		},
		Scanner: ScannerConfig{
			CollectionsDir:   getEnv("COLLECTIONS_DIR", "./data"),
			DepthMode:        getEnvAsBool("DEPTH_MODE", false),
			FeeFetchRetries:  getEnvAsInt("FEE_FETCH_RETRIES", 20),
			FeeFetchInterval: getEnvAsDuration("FEE_FETCH_INTERVAL", 100*time.Millisecond),

			GateInterval:     getEnvAsDuration("GATE_INTERVAL", 100*time.Millisecond),
			RateLimitBackoff: getEnvAsDuration("RATE_LIMIT_BACKOFF", 200*time.Millisecond),
			StaggerInterval:  getEnvAsDuration("STAGGER_INTERVAL", 20*time.Millisecond),

			ScanInterval: getEnvAsDuration("SCAN_INTERVAL", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Валидация критичных параметров
	if cfg.Security.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required for encrypting API keys")
	}

	if len(cfg.Security.EncryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	return cfg, nil
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
