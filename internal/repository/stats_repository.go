package repository

import (
	"database/sql"
	"time"

	"arbitrage/internal/models"
)

// StatsRepository - агрегация models.Stats из таблицы scan_runs, без
// отдельной торговой таблицы trades (Non-goal: модуль не исполняет сделки).
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats считает суммарные и периодные счётчики скана/возможностей.
func (r *StatsRepository) GetStats() (*models.Stats, error) {
	stats := &models.Stats{}

	if err := r.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(opportunities_found), 0) FROM scan_runs`).
		Scan(&stats.TotalScans, &stats.TotalOpportunities); err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := now.Truncate(24 * time.Hour)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	periods := []struct {
		since  time.Time
		scans  *int
		opps   *int
	}{
		{dayStart, &stats.TodayScans, &stats.TodayOpportunities},
		{weekStart, &stats.WeekScans, &stats.WeekOpportunities},
		{monthStart, &stats.MonthScans, &stats.MonthOpportunities},
	}
	for _, p := range periods {
		if err := r.db.QueryRow(
			`SELECT COUNT(*), COALESCE(SUM(opportunities_found), 0) FROM scan_runs WHERE started_at >= $1`,
			p.since,
		).Scan(p.scans, p.opps); err != nil {
			return nil, err
		}
	}

	return stats, nil
}
