package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/shared"
)

// Upload is one row of upload history.
type Upload struct {
	ID            string            `json:"id"`
	Sequence      int               `json:"sequence"`
	UploadKey     string            `json:"upload_key"`
	DJName        string            `json:"dj_name"`
	Title         string            `json:"title"`
	BroadcastDate string            `json:"broadcast_date"`
	Status        models.StatusKind `json:"status"`
	Message       string            `json:"message"`
	Destinations  string            `json:"destinations,omitempty"` // comma-separated destination names attempted
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   sql.NullTime      `json:"completed_at"`
}

// UploadRepository handles upload history rows.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository creates a new UploadRepository with the given database connection
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Record inserts or replaces the history row for an upload id. The
// orchestrator calls it once per terminal state, so replace semantics keep
// manual re-runs to a single row per id.
func (r *UploadRepository) Record(upload *Upload) error {
	if upload.ID == "" {
		return fmt.Errorf("upload id is required")
	}
	if upload.Sequence == 0 {
		sequence, err := NextSequence(r.db, "uploads")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		upload.Sequence = sequence
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT OR REPLACE INTO uploads (id, sequence, upload_key, dj_name, title, broadcast_date, status, message, destinations, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		upload.ID,
		upload.Sequence,
		upload.UploadKey,
		upload.DJName,
		upload.Title,
		upload.BroadcastDate,
		string(upload.Status),
		upload.Message,
		upload.Destinations,
		upload.CreatedAt,
		upload.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	return nil
}

// Get retrieves one upload history row by id.
func (r *UploadRepository) Get(id string) (*Upload, error) {
	query := `
		SELECT id, sequence, upload_key, dj_name, title, broadcast_date, status, message, destinations, created_at, completed_at
		FROM uploads
		WHERE id = ?
	`

	upload, err := r.scanOne(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrUploadNotFound, id)
	}
	return upload, err
}

// GetByKey retrieves the upload history row for a deterministic upload key.
func (r *UploadRepository) GetByKey(key string) (*Upload, error) {
	query := `
		SELECT id, sequence, upload_key, dj_name, title, broadcast_date, status, message, destinations, created_at, completed_at
		FROM uploads
		WHERE upload_key = ?
		ORDER BY sequence DESC
		LIMIT 1
	`

	upload, err := r.scanOne(r.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: key %s", shared.ErrUploadNotFound, key)
	}
	return upload, err
}

// List returns upload history rows, most recent first, up to limit.
func (r *UploadRepository) List(limit int) ([]*Upload, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, sequence, upload_key, dj_name, title, broadcast_date, status, message, destinations, created_at, completed_at
		FROM uploads
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		upload, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *UploadRepository) scanOne(row *sql.Row) (*Upload, error) {
	return r.scan(row)
}

func (r *UploadRepository) scan(row scannable) (*Upload, error) {
	var upload Upload
	var status string
	err := row.Scan(
		&upload.ID,
		&upload.Sequence,
		&upload.UploadKey,
		&upload.DJName,
		&upload.Title,
		&upload.BroadcastDate,
		&status,
		&upload.Message,
		&upload.Destinations,
		&upload.CreatedAt,
		&upload.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	upload.Status = models.StatusKind(status)
	return &upload, nil
}
