package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"onecore/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// UploadedFileRepository defines the contract for CSV upload metadata.
// A nil owner in List means every user's files.
type UploadedFileRepository interface {
	Create(ctx context.Context, file *domain.UploadedFile) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.UploadedFile, error)
	List(ctx context.Context, owner *uuid.UUID, offset, limit int) ([]domain.UploadedFile, int, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.UploadStatus) error
}

// CSVRowRepository stores the parsed data rows of an uploaded file.
type CSVRowRepository interface {
	CreateBatch(ctx context.Context, fileID uuid.UUID, rows []domain.CSVRow) error
	ListByFile(ctx context.Context, fileID uuid.UUID, offset, limit int) ([]domain.CSVRow, int, error)
}

// FileValidationRepository stores validation findings for an uploaded file.
type FileValidationRepository interface {
	CreateBatch(ctx context.Context, fileID uuid.UUID, results []domain.ValidationResult) error
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]domain.FileValidation, error)
}

// DocumentRepository defines the contract for analyzed document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	UpdateAnalysis(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, docID uuid.UUID) error
}

// ExtractionRepository stores the data extracted from a document. A document
// has at most one invoice or info record.
type ExtractionRepository interface {
	SaveInvoice(ctx context.Context, docID uuid.UUID, data *domain.InvoiceData, rawText string) error
	SaveInfo(ctx context.Context, docID uuid.UUID, data *domain.InfoData, rawText string) error
	GetInvoice(ctx context.Context, docID uuid.UUID) (*domain.InvoiceData, error)
	GetInfo(ctx context.Context, docID uuid.UUID) (*domain.InfoData, error)
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}

// EventLogRepository is the append-only audit store.
type EventLogRepository interface {
	Create(ctx context.Context, event *domain.EventLog) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.EventLog, error)
	List(ctx context.Context, filter domain.EventFilter, offset, limit int) ([]domain.EventLog, int, error)
	CountByType(ctx context.Context, from, to *time.Time) (map[domain.EventType]int, error)
}
