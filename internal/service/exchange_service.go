package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/ratelimit"
	"arbitrage/pkg/retry"
)

// Ошибки сервиса площадок
var (
	ErrVenueNotSupported     = errors.New("venue is not supported")
	ErrVenueAlreadyConnected = errors.New("venue is already connected")
	ErrVenueNotConnected     = errors.New("venue is not connected")
	ErrInvalidCredentials    = errors.New("invalid API credentials")
	ErrConnectionFailed      = errors.New("failed to connect to venue")
)

// VenueService управляет (опциональными) учётными данными площадок.
//
// Модуль не исполняет сделки (Non-goal) и работает анонимно по умолчанию -
// но некоторые площадки выдают более высокие лимиты частоты запросов на
// рыночные данные авторизованным клиентам. VenueService хранит подписанные
// учётные данные зашифрованными (CredentialRepository, pkg/crypto) и
// поддерживает кэш живых venueclient.VenueClient-соединений (GetConnection).
// catalog.Catalog, fetch.Fetcher и сканер этот кэш не используют - в
// cmd/server они получают анонимных клиентов.
type VenueService struct {
	credentialRepo CredentialRepositoryInterface
	limiter        *ratelimit.MultiLimiter

	connectionsMu sync.RWMutex
	connections   map[string]venueclient.VenueClient
}

// NewVenueService создает новый экземпляр сервиса.
func NewVenueService(credentialRepo *repository.CredentialRepository, limiter *ratelimit.MultiLimiter) *VenueService {
	return &VenueService{
		credentialRepo: credentialRepo,
		limiter:        limiter,
		connections:    make(map[string]venueclient.VenueClient),
	}
}

// ConnectVenue сохраняет учётные данные площадки и проверяет их, выполняя
// пробный LoadMarkets (с retry.NetworkConfig - площадки изредка рвут
// соединение на холодный старт). Выполняет:
// 1. Проверку поддержки площадки
// 2. Тестовое подключение (LoadMarkets с переданными ключами, до 4 попыток)
// 3. Сохранение зашифрованных ключей в БД
func (s *VenueService) ConnectVenue(ctx context.Context, name, apiKey, secretKey, passphrase string) error {
	name = strings.ToLower(name)

	if !venueclient.IsSupported(name) {
		return ErrVenueNotSupported
	}

	if existing, err := s.credentialRepo.GetByName(name); err == nil && existing.Connected {
		return ErrVenueAlreadyConnected
	}

	creds := venueclient.Credentials{APIKey: apiKey, APISecret: secretKey, Passphrase: passphrase}
	client, err := venueclient.New(name, creds, s.limiter)
	if err != nil {
		return err
	}

	cfg := retry.NetworkConfig()
	cfg.RetryIf = retry.RetryIfNotContext
	if _, err := retry.DoWithResult(ctx, func() (*models.Venue, error) {
		return client.LoadMarkets(ctx)
	}, cfg); err != nil {
		_ = client.Close()
		return errors.Join(ErrConnectionFailed, err)
	}

	account := &models.VenueAccount{
		Name:       name,
		APIKey:     apiKey,
		SecretKey:  secretKey,
		Passphrase: passphrase,
		Connected:  true,
	}
	if err := s.credentialRepo.Upsert(account); err != nil {
		_ = client.Close()
		return err
	}

	s.connectionsMu.Lock()
	s.connections[name] = client
	s.connectionsMu.Unlock()
	metrics.UpdateVenueStatus(name, true)

	return nil
}

// DisconnectVenue удаляет сохранённые учётные данные площадки и закрывает
// кэшированное соединение, если оно есть.
func (s *VenueService) DisconnectVenue(name string) error {
	name = strings.ToLower(name)

	account, err := s.credentialRepo.GetByName(name)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return ErrVenueNotConnected
		}
		return err
	}
	if !account.Connected {
		return ErrVenueNotConnected
	}

	s.connectionsMu.Lock()
	if conn, exists := s.connections[name]; exists {
		_ = conn.Close()
		delete(s.connections, name)
	}
	s.connectionsMu.Unlock()
	metrics.UpdateVenueStatus(name, false)

	return s.credentialRepo.Delete(name)
}

// GetAllVenues возвращает статус подключения для каждой поддерживаемой
// площадки (включая те, для которых учётные данные не сохранены).
func (s *VenueService) GetAllVenues() ([]*models.VenueAccount, error) {
	saved, err := s.credentialRepo.GetAll()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*models.VenueAccount, len(saved))
	for _, a := range saved {
		byName[a.Name] = a
	}

	result := make([]*models.VenueAccount, 0, len(venueclient.SupportedVenues))
	for _, name := range venueclient.SupportedVenues {
		if account, exists := byName[name]; exists {
			result = append(result, safeVenueAccount(account))
			continue
		}
		result = append(result, &models.VenueAccount{Name: name, Connected: false})
	}
	return result, nil
}

// GetVenueByName возвращает статус подключения площадки по имени, без
// секретных полей.
func (s *VenueService) GetVenueByName(name string) (*models.VenueAccount, error) {
	account, err := s.credentialRepo.GetByName(strings.ToLower(name))
	if err != nil {
		return nil, err
	}
	return safeVenueAccount(account), nil
}

// GetConnection возвращает закэшированный venueclient.VenueClient для
// площадки, создавая его на основе сохранённых учётных данных при первом
// обращении. catalog.Catalog и fetch.Fetcher этот метод не вызывают.
func (s *VenueService) GetConnection(name string) (venueclient.VenueClient, error) {
	name = strings.ToLower(name)

	s.connectionsMu.RLock()
	conn, exists := s.connections[name]
	s.connectionsMu.RUnlock()
	if exists {
		return conn, nil
	}

	account, err := s.credentialRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if !account.Connected {
		return nil, ErrVenueNotConnected
	}

	creds := venueclient.Credentials{APIKey: account.APIKey, APISecret: account.SecretKey, Passphrase: account.Passphrase}
	client, err := venueclient.New(name, creds, s.limiter)
	if err != nil {
		return nil, err
	}

	s.connectionsMu.Lock()
	s.connections[name] = client
	s.connectionsMu.Unlock()

	return client, nil
}

// Close закрывает все закэшированные соединения с площадками. Вызывается
// при graceful shutdown.
func (s *VenueService) Close() error {
	s.connectionsMu.Lock()
	defer s.connectionsMu.Unlock()

	for name, conn := range s.connections {
		_ = conn.Close()
		delete(s.connections, name)
	}
	return nil
}

// CountConnected возвращает количество площадок с сохранёнными учётными
// данными.
func (s *VenueService) CountConnected() (int, error) {
	all, err := s.credentialRepo.GetAll()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range all {
		if a.Connected {
			count++
		}
	}
	return count, nil
}

func safeVenueAccount(account *models.VenueAccount) *models.VenueAccount {
	return &models.VenueAccount{
		ID:        account.ID,
		Name:      account.Name,
		Connected: account.Connected,
		LastError: account.LastError,
		UpdatedAt: account.UpdatedAt,
		CreatedAt: account.CreatedAt,
	}
}
