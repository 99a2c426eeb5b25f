package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is an account that can authenticate against the API.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        *string   `db:"email" json:"email,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UploadedFile tracks a CSV file accepted by the intake flow.
type UploadedFile struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	UserID           uuid.UUID    `db:"user_id" json:"user_id"`
	Filename         string       `db:"filename" json:"filename"`
	OriginalFilename string       `db:"original_filename" json:"original_filename"`
	S3Key            string       `db:"s3_key" json:"s3_key"`
	FileSize         int64        `db:"file_size" json:"file_size"`
	ContentType      string       `db:"content_type" json:"content_type"`
	Param1           string       `db:"param1" json:"param1"`
	Param2           string       `db:"param2" json:"param2"`
	RowCount         int          `db:"row_count" json:"row_count"`
	UploadStatus     UploadStatus `db:"upload_status" json:"upload_status"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// CSVRow is one stored data row of an uploaded file. Data is a JSON object
// whose keys keep the header order. RowNumber counts the header as row 1.
type CSVRow struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	FileID    uuid.UUID       `db:"uploaded_file_id" json:"uploaded_file_id"`
	RowNumber int             `db:"row_number" json:"row_number"`
	Data      json.RawMessage `db:"data" json:"data"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// FileValidation is a persisted ValidationResult.
type FileValidation struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	FileID         uuid.UUID      `db:"uploaded_file_id" json:"uploaded_file_id"`
	ValidationType ValidationType `db:"validation_type" json:"validation_type"`
	RowNumber      *int           `db:"row_number" json:"row_number"`
	ColumnName     *string        `db:"column_name" json:"column_name"`
	Message        string         `db:"message" json:"message"`
	Severity       Severity       `db:"severity" json:"severity"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// Result converts the stored row back to its value form.
func (v *FileValidation) Result() ValidationResult {
	return ValidationResult{
		ValidationType: v.ValidationType,
		RowNumber:      v.RowNumber,
		ColumnName:     v.ColumnName,
		Message:        v.Message,
		Severity:       v.Severity,
	}
}

// Document is a PDF or image uploaded for AI analysis.
type Document struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	UserID           uuid.UUID      `db:"user_id" json:"user_id"`
	Filename         string         `db:"filename" json:"filename"`
	OriginalFilename string         `db:"original_filename" json:"original_filename"`
	S3Key            string         `db:"s3_key" json:"s3_key"`
	FileSize         int64          `db:"file_size" json:"file_size"`
	ContentType      string         `db:"content_type" json:"content_type"`
	DocumentType     *DocumentType  `db:"document_type" json:"document_type"`
	Confidence       *float64       `db:"confidence" json:"confidence"`
	AnalysisStatus   AnalysisStatus `db:"analysis_status" json:"analysis_status"`
	AnalysisError    *string        `db:"analysis_error" json:"analysis_error,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	UserID       uuid.UUID
	Status       AnalysisStatus
	DocumentType DocumentType
}

// DocumentDetail is a document together with whatever was extracted from it.
type DocumentDetail struct {
	Document
	DownloadURL string       `json:"download_url,omitempty"`
	InvoiceData *InvoiceData `json:"invoice_data"`
	InfoData    *InfoData    `json:"info_data"`
}

// EventLog is an append-only audit entry.
type EventLog struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EventType   EventType       `db:"event_type" json:"event_type"`
	Description string          `db:"description" json:"description"`
	UserID      *uuid.UUID      `db:"user_id" json:"user_id"`
	Username    *string         `db:"username" json:"username"`
	DocumentID  *uuid.UUID      `db:"document_id" json:"document_id"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// EventFilter narrows an event listing or export. Zero values mean no filter.
type EventFilter struct {
	EventType         EventType
	DescriptionSearch string
	DateFrom          *time.Time
	DateTo            *time.Time
	UserID            *uuid.UUID
}

// EventStats summarizes event counts keyed by event type label.
type EventStats struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
}
