package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"arbitrage/internal/models"
)

// NotificationRepository - работа с таблицей notifications: журнал событий
// сканера (найдена возможность, ошибка скана, площадка отброшена/ограничена,
// скан завершён - см. models.NotificationType*).
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create записывает новое уведомление.
func (r *NotificationRepository) Create(n *models.Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	var metaJSON []byte
	if n.Meta != nil {
		var err error
		metaJSON, err = json.Marshal(n.Meta)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO notifications (timestamp, type, severity, symbol, message, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return r.db.QueryRow(query, n.Timestamp, n.Type, n.Severity, n.Symbol, n.Message, metaJSON).Scan(&n.ID)
}

// GetRecent возвращает последние limit уведомлений, от новых к старым.
func (r *NotificationRepository) GetRecent(limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, symbol, message, meta
		FROM notifications
		ORDER BY timestamp DESC
		LIMIT $1`
	return r.queryAll(query, limit)
}

// GetByTypes возвращает уведомления, чей тип входит в types.
func (r *NotificationRepository) GetByTypes(types []string) ([]*models.Notification, error) {
	if len(types) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, timestamp, type, severity, symbol, message, meta
		FROM notifications
		WHERE type = ANY($1)
		ORDER BY timestamp DESC`
	return r.queryAll(query, pq.Array(types))
}

func (r *NotificationRepository) queryAll(query string, args ...interface{}) ([]*models.Notification, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var metaJSON []byte
		if err := rows.Scan(&n.ID, &n.Timestamp, &n.Type, &n.Severity, &n.Symbol, &n.Message, &metaJSON); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &n.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteAll очищает журнал уведомлений.
func (r *NotificationRepository) DeleteAll() error {
	_, err := r.db.Exec(`DELETE FROM notifications`)
	return err
}

// DeleteOlderThan удаляет уведомления старше before.
func (r *NotificationRepository) DeleteOlderThan(before time.Time) error {
	_, err := r.db.Exec(`DELETE FROM notifications WHERE timestamp < $1`, before)
	return err
}
