package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation
const mysqlDuplicateEntry = 1062

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, name, email, password_hash, role, track, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Track,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user and fills in its ID and CreatedAt.
// A duplicate email is reported as models.ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, track, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	createdAt := time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.db.ExecContext(ctx, query,
		id, user.Name, user.Email, user.PasswordHash, user.Role, user.Track, createdAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return models.NewError(models.ErrConflict, "user already exists")
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// GetByEmail retrieves a user by email without progress and certificates
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewError(models.ErrNotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID without progress and certificates
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewError(models.ErrNotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.String("userId", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetWithRecords retrieves a user together with its progress entries and certificates
func (r *userRepository) GetWithRecords(ctx context.Context, id string) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.loadRecords(ctx, r.db, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ListAll retrieves every user with progress and certificates, newest first
func (r *userRepository) ListAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	index := make(map[string]int)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Progress = []models.ProgressEntry{}
		user.Certificates = []models.CertificateEntry{}
		index[user.ID] = len(users)
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating users", zap.Error(err))
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	if len(users) == 0 {
		return users, nil
	}

	progress, err := r.queryProgress(ctx, r.db, `SELECT user_id, lesson_id, completed, completed_at FROM progress_entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for userID, entries := range progress {
		if i, ok := index[userID]; ok {
			users[i].Progress = entries
		}
	}

	certificates, err := r.queryCertificates(ctx, r.db, `SELECT user_id, id, lesson_id, certificate_url, created_at FROM certificates ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for userID, entries := range certificates {
		if i, ok := index[userID]; ok {
			users[i].Certificates = entries
		}
	}

	return users, nil
}

// Update runs fn against the user record inside a transaction.
//
// The user row is locked with SELECT ... FOR UPDATE, progress entries are upserted
// and certificates without an ID are inserted. Any error rolls the transaction back.
// fn reads lessons through the transaction, so the call holds a single pooled connection.
func (r *userRepository) Update(ctx context.Context, id string, fn func(user *models.User, lessons models.LessonReader) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? FOR UPDATE`
	user, err := scanUser(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewError(models.ErrNotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("failed to lock user", zap.Error(err), zap.String("userId", id))
		return fmt.Errorf("failed to lock user: %w", err)
	}

	if err := r.loadRecords(ctx, tx, user); err != nil {
		return err
	}

	lessons := &lessonRepository{db: tx, logger: r.logger, lockReads: true}
	if err := fn(user, lessons); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET track = ? WHERE id = ?`, user.Track, user.ID); err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.String("userId", id))
		return fmt.Errorf("failed to update user: %w", err)
	}

	upsertProgress := `
		INSERT INTO progress_entries (user_id, lesson_id, completed, completed_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE completed = VALUES(completed), completed_at = VALUES(completed_at)
	`
	for _, p := range user.Progress {
		if _, err := tx.ExecContext(ctx, upsertProgress, user.ID, p.LessonID, p.Completed, p.CompletedAt); err != nil {
			r.logger.Error("failed to save progress", zap.Error(err), zap.String("userId", id))
			return fmt.Errorf("failed to save progress: %w", err)
		}
	}

	insertCertificate := `
		INSERT INTO certificates (id, user_id, lesson_id, certificate_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for i := range user.Certificates {
		c := &user.Certificates[i]
		if c.ID != "" {
			continue
		}
		c.ID = uuid.New().String()
		if _, err := tx.ExecContext(ctx, insertCertificate, c.ID, user.ID, c.LessonID, c.CertificateURL, c.CreatedAt); err != nil {
			r.logger.Error("failed to save certificate", zap.Error(err), zap.String("userId", id))
			return fmt.Errorf("failed to save certificate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit transaction", zap.Error(err), zap.String("userId", id))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// loadRecords fills in the progress entries and certificates of user
func (r *userRepository) loadRecords(ctx context.Context, q dbtx, user *models.User) error {
	progress, err := r.queryProgress(ctx, q,
		`SELECT user_id, lesson_id, completed, completed_at FROM progress_entries WHERE user_id = ? ORDER BY id`, user.ID)
	if err != nil {
		return err
	}
	user.Progress = progress[user.ID]
	if user.Progress == nil {
		user.Progress = []models.ProgressEntry{}
	}

	certificates, err := r.queryCertificates(ctx, q,
		`SELECT user_id, id, lesson_id, certificate_url, created_at FROM certificates WHERE user_id = ? ORDER BY seq`, user.ID)
	if err != nil {
		return err
	}
	user.Certificates = certificates[user.ID]
	if user.Certificates == nil {
		user.Certificates = []models.CertificateEntry{}
	}

	return nil
}

// queryProgress runs a progress query and groups the entries by user ID
func (r *userRepository) queryProgress(ctx context.Context, q dbtx, query string, args ...any) (map[string][]models.ProgressEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query progress", zap.Error(err))
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.ProgressEntry)
	for rows.Next() {
		var userID string
		var p models.ProgressEntry
		var completedAt sql.NullTime
		if err := rows.Scan(&userID, &p.LessonID, &p.Completed, &completedAt); err != nil {
			r.logger.Error("failed to scan progress", zap.Error(err))
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			p.CompletedAt = &t
		}
		result[userID] = append(result[userID], p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating progress", zap.Error(err))
		return nil, fmt.Errorf("error iterating progress: %w", err)
	}

	return result, nil
}

// queryCertificates runs a certificate query and groups the entries by user ID
func (r *userRepository) queryCertificates(ctx context.Context, q dbtx, query string, args ...any) (map[string][]models.CertificateEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query certificates", zap.Error(err))
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.CertificateEntry)
	for rows.Next() {
		var userID string
		var c models.CertificateEntry
		var lessonID sql.NullString
		if err := rows.Scan(&userID, &c.ID, &lessonID, &c.CertificateURL, &c.CreatedAt); err != nil {
			r.logger.Error("failed to scan certificate", zap.Error(err))
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		if lessonID.Valid {
			id := lessonID.String
			c.LessonID = &id
		}
		result[userID] = append(result[userID], c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating certificates", zap.Error(err))
		return nil, fmt.Errorf("error iterating certificates: %w", err)
	}

	return result, nil
}
