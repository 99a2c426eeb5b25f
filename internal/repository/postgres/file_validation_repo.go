package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onecore/internal/domain"
	"onecore/internal/port"
)

type fileValidationRepo struct {
	db *sqlx.DB
}

// NewFileValidationRepo creates a new PostgreSQL-backed FileValidationRepository.
func NewFileValidationRepo(db *sqlx.DB) port.FileValidationRepository {
	return &fileValidationRepo{db: db}
}

// CreateBatch stores results keeping their order through the position column.
func (r *fileValidationRepo) CreateBatch(ctx context.Context, fileID uuid.UUID, results []domain.ValidationResult) error {
	if len(results) == 0 {
		return nil
	}

	now := time.Now().UTC()
	valueStrings := make([]string, 0, len(results))
	valueArgs := make([]interface{}, 0, len(results)*9)

	for i, res := range results {
		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			uuid.New(), fileID, i, res.ValidationType, res.RowNumber, res.ColumnName,
			res.Message, res.Severity, now)
	}

	query := fmt.Sprintf(
		`INSERT INTO file_validations (
			id, uploaded_file_id, position, validation_type, row_number, column_name,
			message, severity, created_at
		) VALUES %s`,
		strings.Join(valueStrings, ", "))

	_, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("fileValidationRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *fileValidationRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]domain.FileValidation, error) {
	results := []domain.FileValidation{}
	err := r.db.SelectContext(ctx, &results,
		`SELECT id, uploaded_file_id, validation_type, row_number, column_name, message, severity, created_at
		FROM file_validations WHERE uploaded_file_id = $1 ORDER BY position`,
		fileID)
	if err != nil {
		return nil, fmt.Errorf("fileValidationRepo.ListByFile: %w", err)
	}
	return results, nil
}
