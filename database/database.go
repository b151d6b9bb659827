package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"alt-text-pipeline/config"
	"alt-text-pipeline/models"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// Database represents the result store connection
type Database struct {
	db *sql.DB

	// Inserts are serialized so that created_at values are
	// non-decreasing in id order under concurrent batches.
	insertMu sync.Mutex
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	var waitInterval time.Duration = 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break
		} else {
			log.WithError(err).Warnf("Database connection failed, retrying in %v", waitInterval)
		}
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewWithDB wraps an already-opened connection. Used by tests that
// substitute a mock connection for a live server.
func NewWithDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying sql.DB
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// CreateAltTextsTable creates the alt_texts table if it doesn't exist
func (d *Database) CreateAltTextsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS alt_texts (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		thumbnail LONGBLOB NOT NULL,
		filename VARCHAR(500) NOT NULL,
		alt_text VARCHAR(125) NOT NULL,
		char_count INT NOT NULL,
		model VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_alt_texts_created_at (created_at)
	)`

	_, err := d.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create alt_texts table: %w", err)
	}

	log.Info("alt_texts table created/verified successfully")
	return nil
}

// InsertResult stores one processed image. It stamps created_at with the
// current UTC instant, computes char_count from the alt text and returns
// the complete persisted entity including its auto-assigned id.
func (d *Database) InsertResult(thumbnail []byte, filename, altText, model string) (*models.Result, error) {
	d.insertMu.Lock()
	defer d.insertMu.Unlock()

	createdAt := time.Now().UTC()
	charCount := len([]rune(altText))

	query := `
	INSERT INTO alt_texts (thumbnail, filename, alt_text, char_count, model, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	res, err := d.db.Exec(query, thumbnail, filename, altText, charCount, model, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert result for %q: %w", filename, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id for %q: %w", filename, err)
	}

	return &models.Result{
		ID:        id,
		Thumbnail: thumbnail,
		Filename:  filename,
		AltText:   altText,
		CharCount: charCount,
		Model:     model,
		CreatedAt: createdAt,
	}, nil
}

// GetResults returns at most limit results, most recent first. Thumbnail
// payloads come back verbatim.
func (d *Database) GetResults(limit int) ([]models.Result, error) {
	query := `
	SELECT id, thumbnail, filename, alt_text, char_count, model, created_at
	FROM alt_texts
	ORDER BY created_at DESC
	LIMIT ?`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetResultsByDateRange returns all results with created_at in the
// inclusive [from, to] range, most recent first.
func (d *Database) GetResultsByDateRange(from, to time.Time) ([]models.Result, error) {
	query := `
	SELECT id, thumbnail, filename, alt_text, char_count, model, created_at
	FROM alt_texts
	WHERE created_at >= ? AND created_at <= ?
	ORDER BY created_at DESC`

	rows, err := d.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query results by date range: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// DeleteResults removes the rows whose ids appear in ids and returns the
// number of rows actually removed. Absent ids are ignored, so the call is
// idempotent.
func (d *Database) DeleteResults(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf("DELETE FROM alt_texts WHERE id IN (%s)", placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete results: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}

	return deleted, nil
}

func scanResults(rows *sql.Rows) ([]models.Result, error) {
	var results []models.Result
	for rows.Next() {
		var r models.Result
		err := rows.Scan(
			&r.ID,
			&r.Thumbnail,
			&r.Filename,
			&r.AltText,
			&r.CharCount,
			&r.Model,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}

	return results, nil
}

// IsUnavailable reports whether err indicates the store itself is down
// rather than a per-statement failure. Further inserts after such an
// error would merely repeat it.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
