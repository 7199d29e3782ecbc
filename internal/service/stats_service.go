package service

import (
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// StatsBroadcaster - интерфейс для отправки обновлений статистики через WebSocket
type StatsBroadcaster interface {
	BroadcastStatsUpdate(stats *models.Stats)
}

// StatsService предоставляет бизнес-логику для работы со статистикой сканов.
//
// Функции:
// - GetStats: получить агрегированную статистику (скан/возможности, по периодам)
// - GetRecentScanRuns: получить историю прогонов сканера (GET /api/stats/scans)
// - RecordScanCompletion: завершить прогон сканера и разослать обновление статистики
type StatsService struct {
	statsRepo   StatsRepositoryInterface
	scanRunRepo ScanRunRepositoryInterface
	wsHub       StatsBroadcaster
}

// NewStatsService создает новый экземпляр StatsService
func NewStatsService(statsRepo *repository.StatsRepository, scanRunRepo *repository.ScanRunRepository) *StatsService {
	return &StatsService{
		statsRepo:   statsRepo,
		scanRunRepo: scanRunRepo,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для broadcast статистики.
//
// Вызывается после инициализации Hub в main.go:
//
//	statsService := service.NewStatsService(statsRepo, scanRunRepo)
//	statsService.SetWebSocketHub(wsHub)
func (s *StatsService) SetWebSocketHub(hub StatsBroadcaster) {
	s.wsHub = hub
}

// GetStats возвращает агрегированную статистику скана и найденных
// возможностей (всего/сегодня/неделя/месяц).
func (s *StatsService) GetStats() (*models.Stats, error) {
	return s.statsRepo.GetStats()
}

// GetRecentScanRuns возвращает последние limit прогонов сканера.
func (s *StatsService) GetRecentScanRuns(limit int) ([]*models.ScanRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.scanRunRepo.GetRecent(limit)
}

// StartScanRun создаёт запись о начале нового прогона сканера.
func (s *StatsService) StartScanRun() (*models.ScanRun, error) {
	run := &models.ScanRun{}
	if err := s.scanRunRepo.Create(run); err != nil {
		return nil, err
	}
	return run, nil
}

// RecordScanCompletion завершает прогон сканера, сохраняя итоговые
// счётчики, и рассылает обновлённую статистику через WebSocket.
func (s *StatsService) RecordScanCompletion(run *models.ScanRun) error {
	if err := s.scanRunRepo.Finish(run); err != nil {
		return err
	}

	if s.wsHub != nil {
		stats, err := s.statsRepo.GetStats()
		if err == nil && stats != nil {
			s.wsHub.BroadcastStatsUpdate(stats)
		}
	}

	return nil
}
