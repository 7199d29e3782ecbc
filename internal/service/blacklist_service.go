package service

import (
	"errors"
	"strings"

	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// Ошибки сервиса черного списка
var (
	ErrBlacklistSymbolEmpty   = errors.New("target cannot be empty")
	ErrBlacklistSymbolExists  = errors.New("target already blacklisted")
	ErrBlacklistEntryNotFound = errors.New("blacklist entry not found")
)

// BlacklistService предоставляет бизнес-логику для управления черным списком.
//
// Черный список исключает площадки и символы из построения каталога
// (C1) - build_all/build_specific проверяют его перед применением
// предикатов. Записи бывают двух родов (models.BlacklistKind):
// конкретный торговый символ или площадка целиком.
//
// Отвечает за:
// - Добавление символа/площадки в черный список с причиной
// - Получение текущего черного списка
// - Удаление записей из черного списка
// - Поиск по части имени
type BlacklistService struct {
	blacklistRepo *repository.BlacklistRepository
}

// NewBlacklistService создает новый экземпляр BlacklistService.
func NewBlacklistService(blacklistRepo *repository.BlacklistRepository) *BlacklistService {
	return &BlacklistService{
		blacklistRepo: blacklistRepo,
	}
}

// AddToBlacklist добавляет символ в черный список (kind = symbol). Для
// исключения площадки целиком используется AddVenueToBlacklist.
//
// Параметры:
// - symbol: торговый символ (например, "BTCUSDT")
// - reason: причина добавления (опционально, пользовательская заметка)
//
// Символ автоматически приводится к верхнему регистру.
//
// Возвращает:
// - *models.BlacklistEntry: созданная запись
// - error: ErrBlacklistSymbolEmpty если символ пустой,
//          ErrBlacklistSymbolExists если символ уже в списке
func (s *BlacklistService) AddToBlacklist(symbol, reason string) (*models.BlacklistEntry, error) {
	return s.addTarget(symbol, reason, models.BlacklistKindSymbol)
}

// AddVenueToBlacklist исключает площадку целиком из построения каталога
// (kind = venue). ID площадки сравнивается с venue.ID в той же таблице,
// что и символы - catalog.Catalog.isBlacklisted не различает их род.
func (s *BlacklistService) AddVenueToBlacklist(venueID, reason string) (*models.BlacklistEntry, error) {
	return s.addTarget(venueID, reason, models.BlacklistKindVenue)
}

func (s *BlacklistService) addTarget(target, reason string, kind models.BlacklistKind) (*models.BlacklistEntry, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrBlacklistSymbolEmpty
	}
	target = strings.ToUpper(target)

	exists, err := s.blacklistRepo.Exists(target)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrBlacklistSymbolExists
	}

	entry := &models.BlacklistEntry{
		Target: target,
		Kind:   kind,
		Reason: strings.TrimSpace(reason),
	}

	if err := s.blacklistRepo.Create(entry); err != nil {
		// Дополнительная проверка на unique violation (race condition)
		if errors.Is(err, repository.ErrBlacklistEntryExists) {
			return nil, ErrBlacklistSymbolExists
		}
		return nil, err
	}

	if count, err := s.blacklistRepo.Count(); err == nil {
		metrics.BlacklistedSymbols.Set(float64(count))
	}

	return entry, nil
}

// GetBlacklist возвращает весь черный список.
//
// Записи отсортированы по дате добавления (новые сверху).
func (s *BlacklistService) GetBlacklist() ([]*models.BlacklistEntry, error) {
	entries, err := s.blacklistRepo.GetAll()
	if err != nil {
		return nil, err
	}

	// Гарантируем возврат пустого массива вместо nil
	if entries == nil {
		entries = []*models.BlacklistEntry{}
	}

	return entries, nil
}

// RemoveFromBlacklist удаляет запись из черного списка по символу или ID площадки.
//
// Значение автоматически приводится к верхнему регистру.
//
// Возвращает:
// - error: ErrBlacklistEntryNotFound если запись не найдена
func (s *BlacklistService) RemoveFromBlacklist(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrBlacklistSymbolEmpty
	}

	err := s.blacklistRepo.Delete(target)
	if err != nil {
		if errors.Is(err, repository.ErrBlacklistEntryNotFound) {
			return ErrBlacklistEntryNotFound
		}
		return err
	}

	if count, err := s.blacklistRepo.Count(); err == nil {
		metrics.BlacklistedSymbols.Set(float64(count))
	}

	return nil
}

// GetBySymbol возвращает запись черного списка по символу или ID площадки.
//
// Значение автоматически приводится к верхнему регистру.
func (s *BlacklistService) GetBySymbol(target string) (*models.BlacklistEntry, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrBlacklistSymbolEmpty
	}

	entry, err := s.blacklistRepo.GetByTarget(target)
	if err != nil {
		if errors.Is(err, repository.ErrBlacklistEntryNotFound) {
			return nil, ErrBlacklistEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

// IsBlacklisted проверяет, исключён ли символ или площадка из каталога.
func (s *BlacklistService) IsBlacklisted(target string) (bool, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return false, ErrBlacklistSymbolEmpty
	}

	return s.blacklistRepo.Exists(target)
}

// UpdateReason обновляет причину исключения.
func (s *BlacklistService) UpdateReason(target, reason string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrBlacklistSymbolEmpty
	}

	err := s.blacklistRepo.UpdateReason(target, strings.TrimSpace(reason))
	if err != nil {
		if errors.Is(err, repository.ErrBlacklistEntryNotFound) {
			return ErrBlacklistEntryNotFound
		}
		return err
	}

	return nil
}

// Search ищет записи по части символа или имени площадки.
//
// Поиск регистронезависимый.
func (s *BlacklistService) Search(query string) ([]*models.BlacklistEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetBlacklist()
	}

	entries, err := s.blacklistRepo.Search(query)
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []*models.BlacklistEntry{}
	}

	return entries, nil
}

// GetCount возвращает количество записей в черном списке.
func (s *BlacklistService) GetCount() (int, error) {
	return s.blacklistRepo.Count()
}

// ClearAll очищает весь черный список.
//
// Используйте с осторожностью - удаляет все записи без возможности восстановления.
func (s *BlacklistService) ClearAll() error {
	return s.blacklistRepo.DeleteAll()
}
