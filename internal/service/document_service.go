package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"onecore/internal/analyzer"
	"onecore/internal/config"
	"onecore/internal/domain"
	"onecore/internal/metrics"
	"onecore/internal/port"
)

// DocumentUploadInput is the DTO for document upload requests.
type DocumentUploadInput struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// DocumentListFilter narrows a caller's document listing.
type DocumentListFilter struct {
	Status       domain.AnalysisStatus
	DocumentType domain.DocumentType
}

// DocumentContent is a stored document ready to be streamed back.
type DocumentContent struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DocumentService defines the document analysis contract. Documents are only
// visible to the user who uploaded them.
type DocumentService interface {
	Upload(ctx context.Context, caller Caller, input DocumentUploadInput) (*domain.DocumentDetail, error)
	List(ctx context.Context, caller Caller, filter DocumentListFilter, offset, limit int) ([]domain.Document, int, error)
	Get(ctx context.Context, caller Caller, docID uuid.UUID) (*domain.DocumentDetail, error)
	Delete(ctx context.Context, caller Caller, docID uuid.UUID) error
	Reanalyze(ctx context.Context, caller Caller, docID uuid.UUID) (*domain.DocumentDetail, error)
	Download(ctx context.Context, caller Caller, docID uuid.UUID) (*DocumentContent, error)
}

type documentService struct {
	docRepo        port.DocumentRepository
	extractionRepo port.ExtractionRepository
	storage        port.ObjectStorage
	analyzer       port.DocumentAnalyzer
	events         EventService
	metrics        *metrics.Metrics
	s3Cfg          *config.S3Config
	uploadCfg      *config.UploadConfig
	now            func() time.Time
}

// NewDocumentService creates a new DocumentService implementation. m may be nil.
func NewDocumentService(
	docRepo port.DocumentRepository,
	extractionRepo port.ExtractionRepository,
	storage port.ObjectStorage,
	docAnalyzer port.DocumentAnalyzer,
	events EventService,
	m *metrics.Metrics,
	s3Cfg *config.S3Config,
	uploadCfg *config.UploadConfig,
) DocumentService {
	return &documentService{
		docRepo:        docRepo,
		extractionRepo: extractionRepo,
		storage:        storage,
		analyzer:       docAnalyzer,
		events:         events,
		metrics:        m,
		s3Cfg:          s3Cfg,
		uploadCfg:      uploadCfg,
		now:            time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, caller Caller, input DocumentUploadInput) (*domain.DocumentDetail, error) {
	ext, ok := allowedExtension(input.Filename, s.uploadCfg.AllowedDocumentExtensions)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	content, err := readLimited(input.Content, input.Size, s.uploadCfg.MaxDocumentSizeBytes())
	if err != nil {
		return nil, err
	}

	docID := uuid.New()
	contentType := analyzer.ContentTypeFor(input.Filename)
	filename := fmt.Sprintf("%s_%s.%s", s.now().UTC().Format(keyTimeLayout), docID, ext)
	key := fmt.Sprintf("documents/%s/%s", caller.UserID, filename)

	log.Printf("documentService.Upload: uploading %s (%s, %d bytes) for user %s",
		input.Filename, contentType, len(content), caller.UserID)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(content),
		ContentType: contentType,
		Size:        int64(len(content)),
	}); err != nil {
		log.Printf("documentService.Upload: S3 upload failed for %s: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	doc := &domain.Document{
		ID:               docID,
		UserID:           caller.UserID,
		Filename:         filename,
		OriginalFilename: input.Filename,
		S3Key:            key,
		FileSize:         int64(len(content)),
		ContentType:      contentType,
		AnalysisStatus:   domain.AnalysisStatusProcessing,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		log.Printf("documentService.Upload: failed to create document record: %v", err)
		if delErr := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); delErr != nil {
			log.Printf("documentService.Upload: failed to remove orphaned object %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	s.events.LogDocumentUpload(ctx, doc.ID, input.Filename, caller.UserID)

	return s.analyze(ctx, caller, doc, content)
}

// analyze runs the analyzer on content and persists the outcome on doc. The
// analyzer itself never fails; an error here means the result could not be
// stored, in which case the document is marked failed.
func (s *documentService) analyze(ctx context.Context, caller Caller, doc *domain.Document, content []byte) (*domain.DocumentDetail, error) {
	// Analysis outlives a disconnected client; each AI call is still bounded
	// by the analyzer's own timeout.
	result := s.analyzer.Analyze(context.WithoutCancel(ctx), content, doc.ContentType, doc.OriginalFilename)
	s.metrics.RecordDocumentAnalyzed(result.DocumentType)

	detail, err := s.saveAnalysis(ctx, doc, result)
	if err != nil {
		log.Printf("documentService.analyze: persisting analysis of %s failed: %v", doc.ID, err)
		msg := err.Error()
		doc.AnalysisStatus = domain.AnalysisStatusFailed
		doc.AnalysisError = &msg
		if updErr := s.docRepo.UpdateAnalysis(ctx, doc); updErr != nil {
			log.Printf("documentService.analyze: marking %s failed: %v", doc.ID, updErr)
		}
		s.events.LogAIAnalysis(ctx, doc.ID, "unknown", &caller.UserID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	s.events.LogAIAnalysis(ctx, doc.ID, string(result.DocumentType), &caller.UserID, nil)
	s.attachURL(ctx, detail)
	return detail, nil
}

func (s *documentService) saveAnalysis(ctx context.Context, doc *domain.Document, result *domain.DocumentAnalysisResult) (*domain.DocumentDetail, error) {
	detail := &domain.DocumentDetail{}

	switch {
	case result.DocumentType == domain.DocumentTypeInvoice && result.InvoiceData != nil:
		if err := s.extractionRepo.SaveInvoice(ctx, doc.ID, result.InvoiceData, result.RawText); err != nil {
			return nil, err
		}
		detail.InvoiceData = result.InvoiceData
	case result.DocumentType == domain.DocumentTypeInfo && result.InfoData != nil:
		if err := s.extractionRepo.SaveInfo(ctx, doc.ID, result.InfoData, result.RawText); err != nil {
			return nil, err
		}
		detail.InfoData = result.InfoData
	}

	docType := result.DocumentType
	confidence := result.Confidence
	doc.DocumentType = &docType
	doc.Confidence = &confidence
	doc.AnalysisStatus = domain.AnalysisStatusCompleted
	doc.AnalysisError = nil
	if err := s.docRepo.UpdateAnalysis(ctx, doc); err != nil {
		return nil, err
	}

	detail.Document = *doc
	return detail, nil
}

func (s *documentService) attachURL(ctx context.Context, detail *domain.DocumentDetail) {
	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, detail.S3Key, s.s3Cfg.PresignExpiry)
	if err != nil {
		log.Printf("documentService.attachURL: presigning %s: %v", detail.S3Key, err)
		return
	}
	detail.DownloadURL = url
}

func (s *documentService) List(ctx context.Context, caller Caller, filter DocumentListFilter, offset, limit int) ([]domain.Document, int, error) {
	if filter.Status != "" && !domain.ValidAnalysisStatus(filter.Status) {
		return nil, 0, domain.ErrInvalidFilter
	}
	switch filter.DocumentType {
	case "", domain.DocumentTypeInvoice, domain.DocumentTypeInfo, domain.DocumentTypePending:
	default:
		return nil, 0, domain.ErrInvalidFilter
	}

	offset, limit = normalizePage(offset, limit)
	return s.docRepo.List(ctx, domain.DocumentFilter{
		UserID:       caller.UserID,
		Status:       filter.Status,
		DocumentType: filter.DocumentType,
	}, offset, limit)
}

// owned loads a document and hides it from anyone but its uploader.
func (s *documentService) owned(ctx context.Context, caller Caller, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != caller.UserID {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, caller Caller, docID uuid.UUID) (*domain.DocumentDetail, error) {
	doc, err := s.owned(ctx, caller, docID)
	if err != nil {
		return nil, err
	}

	detail := &domain.DocumentDetail{Document: *doc}
	if doc.DocumentType != nil {
		switch *doc.DocumentType {
		case domain.DocumentTypeInvoice:
			detail.InvoiceData, err = s.extractionRepo.GetInvoice(ctx, doc.ID)
		case domain.DocumentTypeInfo:
			detail.InfoData, err = s.extractionRepo.GetInfo(ctx, doc.ID)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("documentService.Get: %w", err)
		}
	}

	s.events.LogUserInteraction(ctx, "Visualización de documento", caller.UserID, &doc.ID, nil)
	s.attachURL(ctx, detail)
	return detail, nil
}

func (s *documentService) Delete(ctx context.Context, caller Caller, docID uuid.UUID) error {
	doc, err := s.owned(ctx, caller, docID)
	if err != nil {
		return err
	}

	log.Printf("documentService.Delete: deleting document %s for user %s", doc.ID, caller.UserID)

	if err := s.storage.Delete(ctx, s.s3Cfg.Bucket, doc.S3Key); err != nil {
		log.Printf("documentService.Delete: failed to delete %s from S3: %v", doc.S3Key, err)
	}
	if err := s.extractionRepo.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("documentService.Delete: %w", err)
	}

	s.events.LogUserInteraction(ctx, "Eliminación de documento", caller.UserID, &doc.ID,
		map[string]any{"filename": doc.OriginalFilename})

	return s.docRepo.Delete(ctx, doc.ID)
}

func (s *documentService) Reanalyze(ctx context.Context, caller Caller, docID uuid.UUID) (*domain.DocumentDetail, error) {
	doc, err := s.owned(ctx, caller, docID)
	if err != nil {
		return nil, err
	}

	content, err := s.storage.Download(ctx, s.s3Cfg.Bucket, doc.S3Key)
	if err != nil {
		log.Printf("documentService.Reanalyze: downloading %s: %v", doc.S3Key, err)
		if errors.Is(err, domain.ErrFileNotFound) {
			return nil, domain.ErrFileNotFound
		}
		return nil, domain.ErrDownloadFailed
	}

	if err := s.extractionRepo.DeleteByDocument(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("documentService.Reanalyze: %w", err)
	}
	doc.AnalysisStatus = domain.AnalysisStatusProcessing
	doc.AnalysisError = nil
	if err := s.docRepo.UpdateAnalysis(ctx, doc); err != nil {
		return nil, fmt.Errorf("documentService.Reanalyze: %w", err)
	}

	return s.analyze(ctx, caller, doc, content)
}

func (s *documentService) Download(ctx context.Context, caller Caller, docID uuid.UUID) (*DocumentContent, error) {
	doc, err := s.owned(ctx, caller, docID)
	if err != nil {
		return nil, err
	}

	content, err := s.storage.Download(ctx, s.s3Cfg.Bucket, doc.S3Key)
	if err != nil {
		log.Printf("documentService.Download: downloading %s: %v", doc.S3Key, err)
		if errors.Is(err, domain.ErrFileNotFound) {
			return nil, domain.ErrFileNotFound
		}
		return nil, domain.ErrDownloadFailed
	}

	s.events.LogUserInteraction(ctx, "Descarga de documento", caller.UserID, &doc.ID, nil)

	return &DocumentContent{
		Filename:    doc.OriginalFilename,
		ContentType: doc.ContentType,
		Content:     content,
	}, nil
}
