package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"onecore/internal/domain"
)

// MockUserRepo is a mock implementation of port.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockUploadedFileRepo is a mock implementation of port.UploadedFileRepository.
type MockUploadedFileRepo struct {
	mock.Mock
}

func (m *MockUploadedFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockUploadedFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.UploadedFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedFile), args.Error(1)
}

func (m *MockUploadedFileRepo) List(ctx context.Context, owner *uuid.UUID, offset, limit int) ([]domain.UploadedFile, int, error) {
	args := m.Called(ctx, owner, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UploadedFile), args.Int(1), args.Error(2)
}

func (m *MockUploadedFileRepo) UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.UploadStatus) error {
	args := m.Called(ctx, fileID, status)
	return args.Error(0)
}

// MockCSVRowRepo is a mock implementation of port.CSVRowRepository.
type MockCSVRowRepo struct {
	mock.Mock
}

func (m *MockCSVRowRepo) CreateBatch(ctx context.Context, fileID uuid.UUID, rows []domain.CSVRow) error {
	args := m.Called(ctx, fileID, rows)
	return args.Error(0)
}

func (m *MockCSVRowRepo) ListByFile(ctx context.Context, fileID uuid.UUID, offset, limit int) ([]domain.CSVRow, int, error) {
	args := m.Called(ctx, fileID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CSVRow), args.Int(1), args.Error(2)
}

// MockFileValidationRepo is a mock implementation of port.FileValidationRepository.
type MockFileValidationRepo struct {
	mock.Mock
}

func (m *MockFileValidationRepo) CreateBatch(ctx context.Context, fileID uuid.UUID, results []domain.ValidationResult) error {
	args := m.Called(ctx, fileID, results)
	return args.Error(0)
}

func (m *MockFileValidationRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]domain.FileValidation, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileValidation), args.Error(1)
}

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) List(ctx context.Context, filter domain.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepo) UpdateAnalysis(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

// MockExtractionRepo is a mock implementation of port.ExtractionRepository.
type MockExtractionRepo struct {
	mock.Mock
}

func (m *MockExtractionRepo) SaveInvoice(ctx context.Context, docID uuid.UUID, data *domain.InvoiceData, rawText string) error {
	args := m.Called(ctx, docID, data, rawText)
	return args.Error(0)
}

func (m *MockExtractionRepo) SaveInfo(ctx context.Context, docID uuid.UUID, data *domain.InfoData, rawText string) error {
	args := m.Called(ctx, docID, data, rawText)
	return args.Error(0)
}

func (m *MockExtractionRepo) GetInvoice(ctx context.Context, docID uuid.UUID) (*domain.InvoiceData, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceData), args.Error(1)
}

func (m *MockExtractionRepo) GetInfo(ctx context.Context, docID uuid.UUID) (*domain.InfoData, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InfoData), args.Error(1)
}

func (m *MockExtractionRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

// MockEventLogRepo is a mock implementation of port.EventLogRepository.
type MockEventLogRepo struct {
	mock.Mock
}

func (m *MockEventLogRepo) Create(ctx context.Context, event *domain.EventLog) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventLogRepo) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.EventLog, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventLog), args.Error(1)
}

func (m *MockEventLogRepo) List(ctx context.Context, filter domain.EventFilter, offset, limit int) ([]domain.EventLog, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EventLog), args.Int(1), args.Error(2)
}

func (m *MockEventLogRepo) CountByType(ctx context.Context, from, to *time.Time) (map[domain.EventType]int, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.EventType]int), args.Error(1)
}
