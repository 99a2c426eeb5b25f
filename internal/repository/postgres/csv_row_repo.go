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

// csvRowBatchSize keeps each INSERT well under the 65535 bind parameter limit.
const csvRowBatchSize = 1000

type csvRowRepo struct {
	db *sqlx.DB
}

// NewCSVRowRepo creates a new PostgreSQL-backed CSVRowRepository.
func NewCSVRowRepo(db *sqlx.DB) port.CSVRowRepository {
	return &csvRowRepo{db: db}
}

// CreateBatch stores all rows of a file in one transaction.
func (r *csvRowRepo) CreateBatch(ctx context.Context, fileID uuid.UUID, rows []domain.CSVRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("csvRowRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for start := 0; start < len(rows); start += csvRowBatchSize {
		end := start + csvRowBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		valueStrings := make([]string, 0, len(chunk))
		valueArgs := make([]interface{}, 0, len(chunk)*5)
		for i := range chunk {
			row := &chunk[i]
			row.ID = uuid.New()
			row.FileID = fileID
			row.CreatedAt = now
			base := i * 5
			valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
				base+1, base+2, base+3, base+4, base+5))
			valueArgs = append(valueArgs, row.ID, row.FileID, row.RowNumber, string(row.Data), row.CreatedAt)
		}

		query := fmt.Sprintf(
			"INSERT INTO csv_rows (id, uploaded_file_id, row_number, data, created_at) VALUES %s",
			strings.Join(valueStrings, ", "))
		if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
			return fmt.Errorf("csvRowRepo.CreateBatch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("csvRowRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *csvRowRepo) ListByFile(ctx context.Context, fileID uuid.UUID, offset, limit int) ([]domain.CSVRow, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM csv_rows WHERE uploaded_file_id = $1", fileID)
	if err != nil {
		return nil, 0, fmt.Errorf("csvRowRepo.ListByFile count: %w", err)
	}

	rows := []domain.CSVRow{}
	err = r.db.SelectContext(ctx, &rows,
		`SELECT id, uploaded_file_id, row_number, data, created_at FROM csv_rows
		WHERE uploaded_file_id = $1 ORDER BY row_number LIMIT $2 OFFSET $3`,
		fileID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("csvRowRepo.ListByFile: %w", err)
	}
	return rows, total, nil
}
