package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"arbitrage/internal/models"
)

// Ошибки репозитория черного списка
var (
	ErrBlacklistEntryNotFound = errors.New("blacklist entry not found")
	ErrBlacklistEntryExists   = errors.New("target already blacklisted")
)

// BlacklistRepository - работа с таблицей blacklist
type BlacklistRepository struct {
	db *sql.DB
}

// NewBlacklistRepository создает новый экземпляр репозитория
func NewBlacklistRepository(db *sql.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// Create добавляет символ или площадку в черный список. Entry.Kind по
// умолчанию считается BlacklistKindSymbol, если не задан явно.
func (r *BlacklistRepository) Create(entry *models.BlacklistEntry) error {
	if entry.Kind == "" {
		entry.Kind = models.BlacklistKindSymbol
	}

	query := `
		INSERT INTO blacklist (target, kind, reason, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	entry.CreatedAt = time.Now()

	err := r.db.QueryRow(
		query,
		strings.ToUpper(entry.Target), // Приводим к верхнему регистру для консистентности
		entry.Kind,
		entry.Reason,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		if isBlacklistUniqueViolation(err) {
			return ErrBlacklistEntryExists
		}
		return err
	}

	return nil
}

// GetAll возвращает весь черный список
func (r *BlacklistRepository) GetAll() ([]*models.BlacklistEntry, error) {
	query := `
		SELECT id, target, kind, reason, created_at
		FROM blacklist
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.BlacklistEntry
	for rows.Next() {
		entry := &models.BlacklistEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Target,
			&entry.Kind,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetByID возвращает запись по ID
func (r *BlacklistRepository) GetByID(id int) (*models.BlacklistEntry, error) {
	query := `
		SELECT id, target, kind, reason, created_at
		FROM blacklist
		WHERE id = $1`

	entry := &models.BlacklistEntry{}
	err := r.db.QueryRow(query, id).Scan(
		&entry.ID,
		&entry.Target,
		&entry.Kind,
		&entry.Reason,
		&entry.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlacklistEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

// GetByTarget возвращает запись по символу или ID площадки
func (r *BlacklistRepository) GetByTarget(target string) (*models.BlacklistEntry, error) {
	query := `
		SELECT id, target, kind, reason, created_at
		FROM blacklist
		WHERE target = $1`

	entry := &models.BlacklistEntry{}
	err := r.db.QueryRow(query, strings.ToUpper(target)).Scan(
		&entry.ID,
		&entry.Target,
		&entry.Kind,
		&entry.Reason,
		&entry.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlacklistEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

// Delete удаляет запись из черного списка по символу или ID площадки
func (r *BlacklistRepository) Delete(target string) error {
	query := `DELETE FROM blacklist WHERE target = $1`

	result, err := r.db.Exec(query, strings.ToUpper(target))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBlacklistEntryNotFound
	}

	return nil
}

// DeleteByID удаляет запись по ID
func (r *BlacklistRepository) DeleteByID(id int) error {
	query := `DELETE FROM blacklist WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBlacklistEntryNotFound
	}

	return nil
}

// Exists проверяет, исключён ли target (символ или площадка) из каталога.
// Kind не участвует в сравнении - catalog.Catalog вызывает Exists и для
// venue.ID, и для символов одной и той же таблицей.
func (r *BlacklistRepository) Exists(target string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blacklist WHERE target = $1)`

	var exists bool
	err := r.db.QueryRow(query, strings.ToUpper(target)).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// UpdateReason обновляет причину исключения
func (r *BlacklistRepository) UpdateReason(target string, reason string) error {
	query := `
		UPDATE blacklist
		SET reason = $1
		WHERE target = $2`

	result, err := r.db.Exec(query, reason, strings.ToUpper(target))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBlacklistEntryNotFound
	}

	return nil
}

// Count возвращает количество записей в черном списке
func (r *BlacklistRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM blacklist`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteAll очищает весь черный список
func (r *BlacklistRepository) DeleteAll() error {
	query := `DELETE FROM blacklist`
	_, err := r.db.Exec(query)
	return err
}

// Search ищет записи по части символа или имени площадки
func (r *BlacklistRepository) Search(query string) ([]*models.BlacklistEntry, error) {
	sqlQuery := `
		SELECT id, target, kind, reason, created_at
		FROM blacklist
		WHERE UPPER(target) LIKE UPPER($1)
		ORDER BY target`

	searchPattern := "%" + query + "%"
	rows, err := r.db.Query(sqlQuery, searchPattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.BlacklistEntry
	for rows.Next() {
		entry := &models.BlacklistEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Target,
			&entry.Kind,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// isBlacklistUniqueViolation проверяет, является ли ошибка нарушением UNIQUE constraint
func isBlacklistUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}
