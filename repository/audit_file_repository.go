package repository

import (
	"context"

	"readily-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditFileRepository handles database operations for archived audit uploads
type AuditFileRepository struct {
	db *pgxpool.Pool
}

// NewAuditFileRepository creates a new audit file repository
func NewAuditFileRepository(db *pgxpool.Pool) *AuditFileRepository {
	return &AuditFileRepository{db: db}
}

// Create creates a new audit file record
func (r *AuditFileRepository) Create(ctx context.Context, file *models.AuditFile) error {
	query := `
		INSERT INTO audit_files (
			id, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		file.ID,
		file.Filename,
		file.MimeType,
		file.Size,
		file.StoragePath,
	).Scan(&file.CreatedAt)
}

// GetByID retrieves an audit file record by ID
func (r *AuditFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditFile, error) {
	file := &models.AuditFile{}
	query := `
		SELECT id, filename, mime_type, size, storage_path, created_at
		FROM audit_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Filename,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// ListRecent returns the most recently archived uploads
func (r *AuditFileRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditFile, error) {
	query := `
		SELECT id, filename, mime_type, size, storage_path, created_at
		FROM audit_files
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.AuditFile
	for rows.Next() {
		file := &models.AuditFile{}
		err := rows.Scan(
			&file.ID,
			&file.Filename,
			&file.MimeType,
			&file.Size,
			&file.StoragePath,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}
