package repository

import (
	"database/sql"
	"errors"
	"time"

	"arbitrage/internal/models"
)

// Ошибки репозитория прогонов сканера
var ErrScanRunNotFound = errors.New("scan run not found")

// ScanRunRepository - работа с таблицей scan_runs (C8: персистентность
// прогонов сканера для GET /api/stats/scans).
type ScanRunRepository struct {
	db *sql.DB
}

func NewScanRunRepository(db *sql.DB) *ScanRunRepository {
	return &ScanRunRepository{db: db}
}

// Create записывает начало прогона и возвращает его ID.
func (r *ScanRunRepository) Create(run *models.ScanRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	query := `
		INSERT INTO scan_runs (started_at, finished_at, venues_polled, symbols_scanned, opportunities_found, errors)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return r.db.QueryRow(
		query,
		run.StartedAt,
		nullTime(run.FinishedAt),
		run.VenuesPolled,
		run.SymbolsScanned,
		run.OpportunitiesFound,
		errorsToJSON(run.Errors),
	).Scan(&run.ID)
}

// Finish завершает прогон, записывая итоговые счётчики.
func (r *ScanRunRepository) Finish(run *models.ScanRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	query := `
		UPDATE scan_runs
		SET finished_at = $1, venues_polled = $2, symbols_scanned = $3, opportunities_found = $4, errors = $5
		WHERE id = $6`

	result, err := r.db.Exec(
		query,
		run.FinishedAt,
		run.VenuesPolled,
		run.SymbolsScanned,
		run.OpportunitiesFound,
		errorsToJSON(run.Errors),
		run.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrScanRunNotFound
	}
	return nil
}

// GetRecent возвращает последние limit прогонов, от новых к старым.
func (r *ScanRunRepository) GetRecent(limit int) ([]*models.ScanRun, error) {
	query := `
		SELECT id, started_at, finished_at, venues_polled, symbols_scanned, opportunities_found, errors
		FROM scan_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ScanRun
	for rows.Next() {
		run := &models.ScanRun{}
		var finishedAt sql.NullTime
		var errsJSON []byte
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&finishedAt,
			&run.VenuesPolled,
			&run.SymbolsScanned,
			&run.OpportunitiesFound,
			&errsJSON,
		); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			run.FinishedAt = finishedAt.Time
		}
		run.Errors = errorsFromJSON(errsJSON)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
