package service

import (
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// ============ Mock BlacklistRepository ============

type MockBlacklistRepository struct {
	entries   map[string]*models.BlacklistEntry
	createErr error
	getErr    error
	deleteErr error
	existsErr error
	updateErr error
	searchErr error
	nextID    int
}

func NewMockBlacklistRepository() *MockBlacklistRepository {
	return &MockBlacklistRepository{
		entries: make(map[string]*models.BlacklistEntry),
		nextID:  1,
	}
}

func (m *MockBlacklistRepository) Create(entry *models.BlacklistEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.entries[entry.Target]; exists {
		return repository.ErrBlacklistEntryExists
	}
	if entry.Kind == "" {
		entry.Kind = models.BlacklistKindSymbol
	}
	entry.ID = m.nextID
	m.nextID++
	entry.CreatedAt = time.Now()
	m.entries[entry.Target] = entry
	return nil
}

func (m *MockBlacklistRepository) GetAll() ([]*models.BlacklistEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.BlacklistEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e)
	}
	return result, nil
}

func (m *MockBlacklistRepository) GetByTarget(target string) (*models.BlacklistEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if entry, exists := m.entries[target]; exists {
		return entry, nil
	}
	return nil, repository.ErrBlacklistEntryNotFound
}

func (m *MockBlacklistRepository) Delete(target string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.entries[target]; !exists {
		return repository.ErrBlacklistEntryNotFound
	}
	delete(m.entries, target)
	return nil
}

func (m *MockBlacklistRepository) Exists(target string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, exists := m.entries[target]
	return exists, nil
}

func (m *MockBlacklistRepository) UpdateReason(target, reason string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if entry, exists := m.entries[target]; exists {
		entry.Reason = reason
		return nil
	}
	return repository.ErrBlacklistEntryNotFound
}

func (m *MockBlacklistRepository) Count() (int, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.entries), nil
}

func (m *MockBlacklistRepository) DeleteAll() error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.entries = make(map[string]*models.BlacklistEntry)
	return nil
}

func (m *MockBlacklistRepository) Search(query string) ([]*models.BlacklistEntry, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var result []*models.BlacklistEntry
	for target, entry := range m.entries {
		if containsIgnoreCase(target, query) {
			result = append(result, entry)
		}
	}
	return result, nil
}

// ============ Mock SettingsRepository ============

type MockSettingsRepository struct {
	settings  *models.Settings
	getErr    error
	updateErr error
}

func defaultTestNotificationPrefs() models.NotificationPreferences {
	return models.NotificationPreferences{
		Opportunity:  true,
		ScanError:    true,
		RateLimited:  false,
		VenueDropped: true,
		ScanComplete: false,
	}
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		settings: &models.Settings{
			ID:                 1,
			DepthMode:          false,
			MinProfitRatio:     1.0,
			ScanIntervalMs:     30000,
			MaxConcurrentScans: nil,
			NotificationPrefs:  defaultTestNotificationPrefs(),
			UpdatedAt:          time.Now(),
		},
	}
}

func (m *MockSettingsRepository) Get() (*models.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.settings, nil
}

func (m *MockSettingsRepository) Update(settings *models.Settings) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.settings = settings
	m.settings.UpdatedAt = time.Now()
	return nil
}

func (m *MockSettingsRepository) UpdateNotificationPrefs(prefs models.NotificationPreferences) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.settings.NotificationPrefs = prefs
	m.settings.UpdatedAt = time.Now()
	return nil
}

// ============ Mock NotificationRepository ============

type MockNotificationRepository struct {
	notifications []*models.Notification
	createErr     error
	getErr        error
	deleteErr     error
	nextID        int
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make([]*models.Notification, 0),
		nextID:        1,
	}
}

func (m *MockNotificationRepository) Create(notif *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	notif.ID = m.nextID
	m.nextID++
	notif.Timestamp = time.Now()
	m.notifications = append(m.notifications, notif)
	return nil
}

func (m *MockNotificationRepository) GetRecent(limit int) ([]*models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if limit <= 0 || limit > len(m.notifications) {
		limit = len(m.notifications)
	}
	start := len(m.notifications) - limit
	if start < 0 {
		start = 0
	}
	return m.notifications[start:], nil
}

func (m *MockNotificationRepository) GetByTypes(types []string) ([]*models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}
	var result []*models.Notification
	for _, n := range m.notifications {
		if typeSet[n.Type] {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) DeleteAll() error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.notifications = make([]*models.Notification, 0)
	return nil
}

func (m *MockNotificationRepository) DeleteOlderThan(before time.Time) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	var kept []*models.Notification
	for _, n := range m.notifications {
		if n.Timestamp.After(before) {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}

// ============ Mock StatsRepository ============

type MockStatsRepository struct {
	stats  *models.Stats
	getErr error
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{
		stats: &models.Stats{},
	}
}

func (m *MockStatsRepository) GetStats() (*models.Stats, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.stats, nil
}

// ============ Mock ScanRunRepository ============

type MockScanRunRepository struct {
	runs      map[int]*models.ScanRun
	createErr error
	finishErr error
	getErr    error
	nextID    int
}

func NewMockScanRunRepository() *MockScanRunRepository {
	return &MockScanRunRepository{
		runs:   make(map[int]*models.ScanRun),
		nextID: 1,
	}
}

func (m *MockScanRunRepository) Create(run *models.ScanRun) error {
	if m.createErr != nil {
		return m.createErr
	}
	run.ID = m.nextID
	m.nextID++
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	m.runs[run.ID] = run
	return nil
}

func (m *MockScanRunRepository) Finish(run *models.ScanRun) error {
	if m.finishErr != nil {
		return m.finishErr
	}
	if _, ok := m.runs[run.ID]; !ok {
		return repository.ErrScanRunNotFound
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	m.runs[run.ID] = run
	return nil
}

func (m *MockScanRunRepository) GetRecent(limit int) ([]*models.ScanRun, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.ScanRun, 0, len(m.runs))
	for _, r := range m.runs {
		result = append(result, r)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ============ Mock CredentialRepository ============

type MockCredentialRepository struct {
	accounts  map[string]*models.VenueAccount
	upsertErr error
	getErr    error
	deleteErr error
}

func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{
		accounts: make(map[string]*models.VenueAccount),
	}
}

func (m *MockCredentialRepository) Upsert(account *models.VenueAccount) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if account.ID == 0 {
		account.ID = len(m.accounts) + 1
	}
	m.accounts[account.Name] = account
	return nil
}

func (m *MockCredentialRepository) GetByName(name string) (*models.VenueAccount, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	account, ok := m.accounts[name]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	return account, nil
}

func (m *MockCredentialRepository) GetAll() ([]*models.VenueAccount, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.VenueAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		result = append(result, a)
	}
	return result, nil
}

func (m *MockCredentialRepository) SetConnected(name string, connected bool, lastErr string) error {
	account, ok := m.accounts[name]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	account.Connected = connected
	account.LastError = lastErr
	return nil
}

func (m *MockCredentialRepository) Delete(name string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.accounts[name]; !ok {
		return repository.ErrCredentialNotFound
	}
	delete(m.accounts, name)
	return nil
}

// ============ Mock broadcasters ============

type MockWebSocketBroadcaster struct {
	notifications []*models.Notification
}

func NewMockWebSocketBroadcaster() *MockWebSocketBroadcaster {
	return &MockWebSocketBroadcaster{
		notifications: make([]*models.Notification, 0),
	}
}

func (m *MockWebSocketBroadcaster) BroadcastNotification(notif *models.Notification) {
	m.notifications = append(m.notifications, notif)
}

type MockStatsBroadcaster struct {
	updates []*models.Stats
}

func NewMockStatsBroadcaster() *MockStatsBroadcaster {
	return &MockStatsBroadcaster{
		updates: make([]*models.Stats, 0),
	}
}

func (m *MockStatsBroadcaster) BroadcastStatsUpdate(stats *models.Stats) {
	m.updates = append(m.updates, stats)
}

// ============ Helper functions ============

func containsIgnoreCase(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && len(substr) > 0 && contains(toLower(s), toLower(substr))))
}

func toLower(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

func contains(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
