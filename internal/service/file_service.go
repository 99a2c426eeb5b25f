package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"onecore/internal/config"
	"onecore/internal/csvvalidator"
	"onecore/internal/domain"
	"onecore/internal/metrics"
	"onecore/internal/port"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 100
	keyTimeLayout    = "20060102_150405"
	csvContentType   = "text/csv"
)

// Caller identifies the authenticated user performing an operation.
type Caller struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

// IsAdmin reports whether the caller has administrative access.
func (c Caller) IsAdmin() bool {
	return c.Role.AtLeast(domain.RoleAdmin)
}

func (c Caller) canAccess(owner uuid.UUID) bool {
	return c.UserID == owner || c.IsAdmin()
}

// CSVUploadInput is the DTO for CSV upload requests. Size is the size the
// client declared; the content is still read with a hard limit.
type CSVUploadInput struct {
	Filename string
	Size     int64
	Content  io.Reader
	Param1   string
	Param2   string
}

// CSVUploadResult is returned after a CSV file is accepted.
type CSVUploadResult struct {
	File        *domain.UploadedFile      `json:"file"`
	Validations []domain.ValidationResult `json:"validations"`
	DownloadURL string                    `json:"download_url"`
}

// FileService defines the CSV intake contract.
type FileService interface {
	Upload(ctx context.Context, caller Caller, input CSVUploadInput) (*CSVUploadResult, error)
	List(ctx context.Context, caller Caller, offset, limit int) ([]domain.UploadedFile, int, error)
	GetByID(ctx context.Context, caller Caller, fileID uuid.UUID) (*domain.UploadedFile, error)
	Validations(ctx context.Context, caller Caller, fileID uuid.UUID) ([]domain.FileValidation, error)
	Rows(ctx context.Context, caller Caller, fileID uuid.UUID, offset, limit int) ([]domain.CSVRow, int, error)
}

type fileService struct {
	fileRepo       port.UploadedFileRepository
	rowRepo        port.CSVRowRepository
	validationRepo port.FileValidationRepository
	storage        port.ObjectStorage
	engine         *csvvalidator.Engine
	metrics        *metrics.Metrics
	s3Cfg          *config.S3Config
	uploadCfg      *config.UploadConfig
	now            func() time.Time
}

// NewFileService creates a new FileService implementation. m may be nil.
func NewFileService(
	fileRepo port.UploadedFileRepository,
	rowRepo port.CSVRowRepository,
	validationRepo port.FileValidationRepository,
	storage port.ObjectStorage,
	engine *csvvalidator.Engine,
	m *metrics.Metrics,
	s3Cfg *config.S3Config,
	uploadCfg *config.UploadConfig,
) FileService {
	return &fileService{
		fileRepo:       fileRepo,
		rowRepo:        rowRepo,
		validationRepo: validationRepo,
		storage:        storage,
		engine:         engine,
		metrics:        m,
		s3Cfg:          s3Cfg,
		uploadCfg:      uploadCfg,
		now:            time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, caller Caller, input CSVUploadInput) (*CSVUploadResult, error) {
	if _, ok := allowedExtension(input.Filename, s.uploadCfg.AllowedCSVExtensions); !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	content, err := readLimited(input.Content, input.Size, s.uploadCfg.MaxFileSizeBytes())
	if err != nil {
		return nil, err
	}

	rows, results := s.engine.ValidateAndProcess(content, input.Filename)
	s.metrics.RecordCSVValidation(results)
	if domain.HasErrors(results) {
		log.Printf("fileService.Upload: rejected %s for user %s: %d blocking validation(s)",
			input.Filename, caller.UserID, len(domain.BlockingResults(results)))
		return nil, &domain.CSVRejectedError{Errors: domain.BlockingResults(results)}
	}

	fileID := uuid.New()
	filename := fmt.Sprintf("%s_%s.csv", s.now().UTC().Format(keyTimeLayout), fileID)
	key := fmt.Sprintf("uploads/%s/%s", caller.UserID, filename)

	log.Printf("fileService.Upload: uploading %s (%d bytes, %d rows) for user %s",
		input.Filename, len(content), len(rows), caller.UserID)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(content),
		ContentType: csvContentType,
		Size:        int64(len(content)),
	}); err != nil {
		log.Printf("fileService.Upload: S3 upload failed for %s: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	file := &domain.UploadedFile{
		ID:               fileID,
		UserID:           caller.UserID,
		Filename:         filename,
		OriginalFilename: input.Filename,
		S3Key:            key,
		FileSize:         int64(len(content)),
		ContentType:      csvContentType,
		Param1:           input.Param1,
		Param2:           input.Param2,
		RowCount:         len(rows),
		UploadStatus:     domain.UploadStatusProcessing,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		log.Printf("fileService.Upload: failed to create file record: %v", err)
		if delErr := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); delErr != nil {
			log.Printf("fileService.Upload: failed to remove orphaned object %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("fileService.Upload: %w", err)
	}

	if err := s.persistContents(ctx, fileID, rows, results); err != nil {
		s.markFailed(ctx, fileID)
		return nil, fmt.Errorf("fileService.Upload: %w", err)
	}

	if err := s.fileRepo.UpdateStatus(ctx, fileID, domain.UploadStatusCompleted); err != nil {
		return nil, fmt.Errorf("fileService.Upload: %w", err)
	}
	file.UploadStatus = domain.UploadStatusCompleted

	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		log.Printf("fileService.Upload: presigning %s: %v", key, err)
	}

	if results == nil {
		results = []domain.ValidationResult{}
	}
	return &CSVUploadResult{File: file, Validations: results, DownloadURL: url}, nil
}

// persistContents stores the data rows and every validation result. Data rows
// are numbered like validation results: the header is row 1.
func (s *fileService) persistContents(ctx context.Context, fileID uuid.UUID, rows []csvvalidator.Row, results []domain.ValidationResult) error {
	stored := make([]domain.CSVRow, 0, len(rows))
	for i, row := range rows {
		data, err := row.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", i+2, err)
		}
		stored = append(stored, domain.CSVRow{RowNumber: i + 2, Data: data})
	}
	if err := s.rowRepo.CreateBatch(ctx, fileID, stored); err != nil {
		return err
	}
	return s.validationRepo.CreateBatch(ctx, fileID, results)
}

func (s *fileService) markFailed(ctx context.Context, fileID uuid.UUID) {
	if err := s.fileRepo.UpdateStatus(ctx, fileID, domain.UploadStatusFailed); err != nil {
		log.Printf("fileService.markFailed: %s: %v", fileID, err)
	}
}

func (s *fileService) List(ctx context.Context, caller Caller, offset, limit int) ([]domain.UploadedFile, int, error) {
	offset, limit = normalizePage(offset, limit)
	var owner *uuid.UUID
	if !caller.IsAdmin() {
		owner = &caller.UserID
	}
	return s.fileRepo.List(ctx, owner, offset, limit)
}

func (s *fileService) GetByID(ctx context.Context, caller Caller, fileID uuid.UUID) (*domain.UploadedFile, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !caller.canAccess(file.UserID) {
		return nil, domain.ErrForbidden
	}
	return file, nil
}

func (s *fileService) Validations(ctx context.Context, caller Caller, fileID uuid.UUID) ([]domain.FileValidation, error) {
	if _, err := s.GetByID(ctx, caller, fileID); err != nil {
		return nil, err
	}
	return s.validationRepo.ListByFile(ctx, fileID)
}

func (s *fileService) Rows(ctx context.Context, caller Caller, fileID uuid.UUID, offset, limit int) ([]domain.CSVRow, int, error) {
	if _, err := s.GetByID(ctx, caller, fileID); err != nil {
		return nil, 0, err
	}
	offset, limit = normalizePage(offset, limit)
	return s.rowRepo.ListByFile(ctx, fileID, offset, limit)
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

// allowedExtension returns the lowercased extension of filename when it is in
// allowed.
func allowedExtension(filename string, allowed []string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", false
	}
	return ext, slices.Contains(allowed, ext)
}

// readLimited reads r fully, failing with ErrFileTooLarge past max bytes and
// ErrEmptyFile when nothing was read.
func readLimited(r io.Reader, declared, max int64) ([]byte, error) {
	if declared > max {
		return nil, domain.ErrFileTooLarge
	}
	if r == nil {
		return nil, domain.ErrEmptyFile
	}
	content, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(content)) > max {
		return nil, domain.ErrFileTooLarge
	}
	if len(content) == 0 {
		return nil, domain.ErrEmptyFile
	}
	return content, nil
}
