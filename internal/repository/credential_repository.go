package repository

import (
	"database/sql"
	"errors"
	"time"

	"arbitrage/internal/models"
	"arbitrage/pkg/crypto"
)

// Ошибки репозитория учётных данных площадок
var (
	ErrCredentialNotFound = errors.New("venue credential not found")
	ErrCredentialExists    = errors.New("credential for this venue already exists")
)

// CredentialRepository - работа с таблицей exchanges (учётные данные
// площадок). API-ключ, секрет и passphrase хранятся в БД зашифрованными
// AES-256-GCM (pkg/crypto) под ключом из Config.Security.EncryptionKey -
// модуль не торгует, но часть площадок выдаёт более высокие лимиты частоты
// запросов на рыночные данные авторизованным клиентам.
type CredentialRepository struct {
	db            *sql.DB
	encryptionKey []byte
}

// NewCredentialRepository создаёт репозиторий учётных данных. key должен
// быть ровно 32 байта (AES-256) - то же требование, что Config.Load()
// уже проверяет для Security.EncryptionKey.
func NewCredentialRepository(db *sql.DB, key []byte) (*CredentialRepository, error) {
	if err := crypto.ValidateKey(key); err != nil {
		return nil, err
	}
	return &CredentialRepository{db: db, encryptionKey: key}, nil
}

// Upsert сохраняет (или обновляет) учётные данные площадки, шифруя секреты
// перед записью.
func (r *CredentialRepository) Upsert(account *models.VenueAccount) error {
	encAPIKey, err := crypto.Encrypt(account.APIKey, r.encryptionKey)
	if err != nil {
		return err
	}
	encSecret, err := crypto.Encrypt(account.SecretKey, r.encryptionKey)
	if err != nil {
		return err
	}
	encPassphrase, err := crypto.Encrypt(account.Passphrase, r.encryptionKey)
	if err != nil {
		return err
	}

	account.UpdatedAt = time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = account.UpdatedAt
	}

	query := `
		INSERT INTO exchanges (name, api_key, secret_key, passphrase, connected, last_error, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			secret_key = EXCLUDED.secret_key,
			passphrase = EXCLUDED.passphrase,
			connected = EXCLUDED.connected,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	return r.db.QueryRow(
		query,
		account.Name,
		encAPIKey,
		encSecret,
		encPassphrase,
		account.Connected,
		account.LastError,
		account.UpdatedAt,
		account.CreatedAt,
	).Scan(&account.ID)
}

// GetByName возвращает учётные данные площадки, расшифрованные и готовые
// к использованию как venueclient.Credentials.
func (r *CredentialRepository) GetByName(name string) (*models.VenueAccount, error) {
	query := `
		SELECT id, name, api_key, secret_key, passphrase, connected, last_error, updated_at, created_at
		FROM exchanges
		WHERE name = $1`

	var encAPIKey, encSecret, encPassphrase string
	account := &models.VenueAccount{}
	err := r.db.QueryRow(query, name).Scan(
		&account.ID,
		&account.Name,
		&encAPIKey,
		&encSecret,
		&encPassphrase,
		&account.Connected,
		&account.LastError,
		&account.UpdatedAt,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}

	if account.APIKey, err = crypto.Decrypt(encAPIKey, r.encryptionKey); err != nil {
		return nil, err
	}
	if account.SecretKey, err = crypto.Decrypt(encSecret, r.encryptionKey); err != nil {
		return nil, err
	}
	if account.Passphrase, err = crypto.Decrypt(encPassphrase, r.encryptionKey); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAll возвращает все сохранённые учётные данные, расшифрованные.
func (r *CredentialRepository) GetAll() ([]*models.VenueAccount, error) {
	query := `
		SELECT id, name, api_key, secret_key, passphrase, connected, last_error, updated_at, created_at
		FROM exchanges
		ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.VenueAccount
	for rows.Next() {
		var encAPIKey, encSecret, encPassphrase string
		account := &models.VenueAccount{}
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&encAPIKey,
			&encSecret,
			&encPassphrase,
			&account.Connected,
			&account.LastError,
			&account.UpdatedAt,
			&account.CreatedAt,
		); err != nil {
			return nil, err
		}
		if account.APIKey, err = crypto.Decrypt(encAPIKey, r.encryptionKey); err != nil {
			return nil, err
		}
		if account.SecretKey, err = crypto.Decrypt(encSecret, r.encryptionKey); err != nil {
			return nil, err
		}
		if account.Passphrase, err = crypto.Decrypt(encPassphrase, r.encryptionKey); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// SetConnected обновляет флаг подключения и последнюю ошибку (если есть).
func (r *CredentialRepository) SetConnected(name string, connected bool, lastErr string) error {
	query := `UPDATE exchanges SET connected = $1, last_error = $2, updated_at = $3 WHERE name = $4`
	result, err := r.db.Exec(query, connected, lastErr, time.Now(), name)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// Delete удаляет сохранённые учётные данные площадки.
func (r *CredentialRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM exchanges WHERE name = $1`, name)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
