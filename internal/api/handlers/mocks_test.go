package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// ============ Mock Blacklist Service ============

// MockBlacklistService мок для BlacklistServiceInterface
type MockBlacklistService struct {
	entries   map[string]*models.BlacklistEntry
	addErr    error
	getErr    error
	removeErr error
	searchErr error
	nextID    int
	mu        sync.RWMutex
}

// NewMockBlacklistService создает новый мок сервиса черного списка
func NewMockBlacklistService() *MockBlacklistService {
	return &MockBlacklistService{
		entries: make(map[string]*models.BlacklistEntry),
		nextID:  1,
	}
}

func (m *MockBlacklistService) AddToBlacklist(symbol, reason string) (*models.BlacklistEntry, error) {
	return m.addTarget(symbol, reason, models.BlacklistKindSymbol)
}

func (m *MockBlacklistService) AddVenueToBlacklist(venueID, reason string) (*models.BlacklistEntry, error) {
	return m.addTarget(venueID, reason, models.BlacklistKindVenue)
}

func (m *MockBlacklistService) addTarget(target, reason string, kind models.BlacklistKind) (*models.BlacklistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return nil, m.addErr
	}

	if _, exists := m.entries[target]; exists {
		return nil, service.ErrBlacklistSymbolExists
	}

	entry := &models.BlacklistEntry{
		ID:        m.nextID,
		Target:    target,
		Kind:      kind,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.entries[target] = entry
	return entry, nil
}

func (m *MockBlacklistService) GetBlacklist() ([]*models.BlacklistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.BlacklistEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e)
	}
	return result, nil
}

func (m *MockBlacklistService) RemoveFromBlacklist(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removeErr != nil {
		return m.removeErr
	}

	if _, exists := m.entries[symbol]; !exists {
		return service.ErrBlacklistEntryNotFound
	}

	delete(m.entries, symbol)
	return nil
}

func (m *MockBlacklistService) GetBySymbol(symbol string) (*models.BlacklistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	if entry, exists := m.entries[symbol]; exists {
		return entry, nil
	}
	return nil, service.ErrBlacklistEntryNotFound
}

func (m *MockBlacklistService) IsBlacklisted(symbol string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return false, m.getErr
	}

	_, exists := m.entries[symbol]
	return exists, nil
}

func (m *MockBlacklistService) UpdateReason(symbol, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, exists := m.entries[symbol]; exists {
		entry.Reason = reason
		return nil
	}
	return service.ErrBlacklistEntryNotFound
}

func (m *MockBlacklistService) Search(query string) ([]*models.BlacklistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}

	result := make([]*models.BlacklistEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e)
	}
	return result, nil
}

func (m *MockBlacklistService) GetCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.entries), nil
}

func (m *MockBlacklistService) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*models.BlacklistEntry)
	return nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockBlacklistService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "add":
		m.addErr = err
	case "get":
		m.getErr = err
	case "remove":
		m.removeErr = err
	case "search":
		m.searchErr = err
	}
}

// AddEntry добавляет запись напрямую (для настройки тестов)
func (m *MockBlacklistService) AddEntry(symbol, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[symbol] = &models.BlacklistEntry{
		ID:        m.nextID,
		Target:    symbol,
		Kind:      models.BlacklistKindSymbol,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	m.nextID++
}

// ============ Mock Settings Service ============

func defaultNotificationPrefs() models.NotificationPreferences {
	return models.NotificationPreferences{
		Opportunity:  true,
		ScanError:    true,
		RateLimited:  false,
		VenueDropped: true,
		ScanComplete: false,
	}
}

// MockSettingsService мок для SettingsServiceInterface
type MockSettingsService struct {
	settings  *models.Settings
	getErr    error
	updateErr error
	mu        sync.RWMutex
}

// NewMockSettingsService создает новый мок сервиса настроек
func NewMockSettingsService() *MockSettingsService {
	return &MockSettingsService{
		settings: &models.Settings{
			ID:                1,
			DepthMode:         false,
			MinProfitRatio:    1.001,
			ScanIntervalMs:    5000,
			NotificationPrefs: defaultNotificationPrefs(),
			UpdatedAt:         time.Now(),
		},
	}
}

func (m *MockSettingsService) GetSettings() (*models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.settings, nil
}

func (m *MockSettingsService) UpdateSettings(req *service.UpdateSettingsRequest) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}

	if req.DepthMode != nil {
		m.settings.DepthMode = *req.DepthMode
	}
	if req.MinProfitRatio != nil {
		if *req.MinProfitRatio < 1.0 {
			return nil, service.ErrInvalidMinProfitRatio
		}
		m.settings.MinProfitRatio = *req.MinProfitRatio
	}
	if req.ScanIntervalMs != nil {
		if *req.ScanIntervalMs < 0 {
			return nil, service.ErrInvalidScanInterval
		}
		m.settings.ScanIntervalMs = *req.ScanIntervalMs
	}
	if req.ClearMaxConcurrentScans {
		m.settings.MaxConcurrentScans = nil
	} else if req.MaxConcurrentScans != nil {
		if *req.MaxConcurrentScans < 1 {
			return nil, service.ErrInvalidMaxConcurrentScans
		}
		m.settings.MaxConcurrentScans = req.MaxConcurrentScans
	}
	if req.NotificationPrefs != nil {
		m.settings.NotificationPrefs = *req.NotificationPrefs
	}
	m.settings.UpdatedAt = time.Now()

	return m.settings, nil
}

func (m *MockSettingsService) UpdateNotificationPrefs(prefs models.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}
	m.settings.NotificationPrefs = prefs
	m.settings.UpdatedAt = time.Now()
	return nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockSettingsService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "get":
		m.getErr = err
	case "update":
		m.updateErr = err
	}
}

// ============ Mock Notification Service ============

// MockNotificationService мок для NotificationServiceInterface
type MockNotificationService struct {
	notifications []*models.Notification
	createErr     error
	getErr        error
	clearErr      error
	suppressed    bool
	nextID        int
	mu            sync.RWMutex
}

// NewMockNotificationService создает новый мок сервиса уведомлений
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{
		notifications: make([]*models.Notification, 0),
		nextID:        1,
	}
}

func (m *MockNotificationService) CreateNotification(notifType, severity, message string, symbol *string, meta map[string]interface{}) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.suppressed {
		return nil, nil
	}

	notif := &models.Notification{
		ID:        m.nextID,
		Type:      notifType,
		Severity:  severity,
		Symbol:    symbol,
		Message:   message,
		Meta:      meta,
		Timestamp: time.Now(),
	}
	m.nextID++
	m.notifications = append(m.notifications, notif)
	return notif, nil
}

func (m *MockNotificationService) GetNotifications(types []string, limit int) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.Notification, 0, len(m.notifications))

	if len(types) == 0 {
		result = append(result, m.notifications...)
	} else {
		typeSet := make(map[string]bool)
		for _, t := range types {
			typeSet[t] = true
		}
		for _, n := range m.notifications {
			if typeSet[n.Type] {
				result = append(result, n)
			}
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (m *MockNotificationService) ClearNotifications() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.clearErr != nil {
		return m.clearErr
	}

	m.notifications = make([]*models.Notification, 0)
	return nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockNotificationService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "create":
		m.createErr = err
	case "get":
		m.getErr = err
	case "clear":
		m.clearErr = err
	}
}

// GetNotificationCount возвращает число хранимых уведомлений (для настройки тестов)
func (m *MockNotificationService) GetNotificationCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.notifications), nil
}

// SetSuppressed имитирует подавление уведомлений настройками (CreateNotification
// возвращает (nil, nil)).
func (m *MockNotificationService) SetSuppressed(suppressed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressed = suppressed
}

// AddNotification добавляет уведомление напрямую (для настройки тестов)
func (m *MockNotificationService) AddNotification(notifType, severity, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = append(m.notifications, &models.Notification{
		ID:        m.nextID,
		Type:      notifType,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now(),
	})
	m.nextID++
}

// ============ Mock Stats Service ============

// MockStatsService мок для StatsServiceInterface
type MockStatsService struct {
	stats    *models.Stats
	runs     []*models.ScanRun
	getErr   error
	runsErr  error
	startErr error
	finErr   error
	nextID   int
	mu       sync.RWMutex
}

// NewMockStatsService создает новый мок сервиса статистики
func NewMockStatsService() *MockStatsService {
	return &MockStatsService{
		stats: &models.Stats{
			TopSymbolsByOpportunity: []models.SymbolStat{},
			TopSymbolsByProfit:      []models.SymbolStat{},
		},
		runs:   make([]*models.ScanRun, 0),
		nextID: 1,
	}
}

func (m *MockStatsService) GetStats() (*models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.stats, nil
}

func (m *MockStatsService) GetRecentScanRuns(limit int) ([]*models.ScanRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.runsErr != nil {
		return nil, m.runsErr
	}

	if limit > 0 && len(m.runs) > limit {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *MockStatsService) StartScanRun() (*models.ScanRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return nil, m.startErr
	}

	run := &models.ScanRun{ID: m.nextID, StartedAt: time.Now()}
	m.nextID++
	m.runs = append(m.runs, run)
	return run, nil
}

func (m *MockStatsService) RecordScanCompletion(run *models.ScanRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finErr != nil {
		return m.finErr
	}
	run.FinishedAt = time.Now()
	return nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockStatsService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "get":
		m.getErr = err
	case "runs":
		m.runsErr = err
	case "start":
		m.startErr = err
	case "finish":
		m.finErr = err
	}
}

// SetStats устанавливает статистику напрямую (для настройки тестов)
func (m *MockStatsService) SetStats(stats *models.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats = stats
}

// AddScanRun добавляет запись о прогоне напрямую (для настройки тестов)
func (m *MockStatsService) AddScanRun(run *models.ScanRun) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
}

// ============ Mock Venue Service ============

// MockVenueService мок для VenueServiceInterface
type MockVenueService struct {
	accounts  map[string]*models.VenueAccount
	connErr   error
	disconErr error
	getErr    error
	mu        sync.RWMutex
}

// NewMockVenueService создает новый мок сервиса площадок
func NewMockVenueService() *MockVenueService {
	return &MockVenueService{
		accounts: make(map[string]*models.VenueAccount),
	}
}

func (m *MockVenueService) ConnectVenue(ctx context.Context, name, apiKey, secretKey, passphrase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connErr != nil {
		return m.connErr
	}
	if _, exists := m.accounts[name]; exists {
		return service.ErrVenueAlreadyConnected
	}
	m.accounts[name] = &models.VenueAccount{Name: name, Connected: true}
	return nil
}

func (m *MockVenueService) DisconnectVenue(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disconErr != nil {
		return m.disconErr
	}
	if _, exists := m.accounts[name]; !exists {
		return service.ErrVenueNotConnected
	}
	delete(m.accounts, name)
	return nil
}

func (m *MockVenueService) GetAllVenues() ([]*models.VenueAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.VenueAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		result = append(result, a)
	}
	return result, nil
}

func (m *MockVenueService) GetVenueByName(name string) (*models.VenueAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	if account, exists := m.accounts[name]; exists {
		return account, nil
	}
	return nil, service.ErrVenueNotConnected
}

func (m *MockVenueService) CountConnected() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.accounts), nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockVenueService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "connect":
		m.connErr = err
	case "disconnect":
		m.disconErr = err
	case "get":
		m.getErr = err
	}
}

// ============ Mock Scan Service ============

// MockScanService мок для ScanServiceInterface
type MockScanService struct {
	result *service.ScanResult
	err    error
	mu     sync.RWMutex
}

// NewMockScanService создает новый мок сервиса сканирования
func NewMockScanService() *MockScanService {
	return &MockScanService{}
}

func (m *MockScanService) TriggerScan(ctx context.Context, req service.ScanRequest) (*service.ScanResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &service.ScanResult{Mode: req.Mode}, nil
}

// SetResult задаёт результат, который вернёт следующий TriggerScan
func (m *MockScanService) SetResult(result *service.ScanResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
}

// SetError задаёт ошибку, которую вернёт следующий TriggerScan
func (m *MockScanService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ============ Helper errors for tests ============

var (
	ErrMockDatabase = errors.New("mock database error")
	ErrMockService  = errors.New("mock service error")
)

// ============ Проверяем, что моки реализуют интерфейсы ============

var _ service.BlacklistServiceInterface = (*MockBlacklistService)(nil)
var _ service.SettingsServiceInterface = (*MockSettingsService)(nil)
var _ service.NotificationServiceInterface = (*MockNotificationService)(nil)
var _ service.StatsServiceInterface = (*MockStatsService)(nil)
var _ service.VenueServiceInterface = (*MockVenueService)(nil)
var _ service.ScanServiceInterface = (*MockScanService)(nil)
