package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onecore/internal/domain"
	"onecore/internal/port"
)

type uploadedFileRepo struct {
	db *sqlx.DB
}

// NewUploadedFileRepo creates a new PostgreSQL-backed UploadedFileRepository.
func NewUploadedFileRepo(db *sqlx.DB) port.UploadedFileRepository {
	return &uploadedFileRepo{db: db}
}

func (r *uploadedFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now

	query := `INSERT INTO uploaded_files (id, user_id, filename, original_filename, s3_key, file_size,
		content_type, param1, param2, row_count, upload_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.UserID, file.Filename, file.OriginalFilename, file.S3Key, file.FileSize,
		file.ContentType, file.Param1, file.Param2, file.RowCount, file.UploadStatus,
		file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("uploadedFileRepo.Create: %w", err)
	}
	return nil
}

func (r *uploadedFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.UploadedFile, error) {
	var file domain.UploadedFile
	err := r.db.GetContext(ctx, &file, "SELECT * FROM uploaded_files WHERE id = $1", fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("uploadedFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *uploadedFileRepo) List(ctx context.Context, owner *uuid.UUID, offset, limit int) ([]domain.UploadedFile, int, error) {
	where := ""
	args := []interface{}{}
	if owner != nil {
		where = " WHERE user_id = $1"
		args = append(args, *owner)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM uploaded_files"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("uploadedFileRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM uploaded_files%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	files := []domain.UploadedFile{}
	if err := r.db.SelectContext(ctx, &files, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("uploadedFileRepo.List: %w", err)
	}
	return files, total, nil
}

func (r *uploadedFileRepo) UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.UploadStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE uploaded_files SET upload_status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("uploadedFileRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
