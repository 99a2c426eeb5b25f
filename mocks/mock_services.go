package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"onecore/internal/domain"
	"onecore/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input service.LoginInput) (*service.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, input service.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, caller service.Caller, input service.CSVUploadInput) (*service.CSVUploadResult, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CSVUploadResult), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, caller service.Caller, offset, limit int) ([]domain.UploadedFile, int, error) {
	args := m.Called(ctx, caller, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UploadedFile), args.Int(1), args.Error(2)
}

func (m *MockFileService) GetByID(ctx context.Context, caller service.Caller, fileID uuid.UUID) (*domain.UploadedFile, error) {
	args := m.Called(ctx, caller, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedFile), args.Error(1)
}

func (m *MockFileService) Validations(ctx context.Context, caller service.Caller, fileID uuid.UUID) ([]domain.FileValidation, error) {
	args := m.Called(ctx, caller, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileValidation), args.Error(1)
}

func (m *MockFileService) Rows(ctx context.Context, caller service.Caller, fileID uuid.UUID, offset, limit int) ([]domain.CSVRow, int, error) {
	args := m.Called(ctx, caller, fileID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CSVRow), args.Int(1), args.Error(2)
}

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, caller service.Caller, input service.DocumentUploadInput) (*domain.DocumentDetail, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentDetail), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, caller service.Caller, filter service.DocumentListFilter, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, caller, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) Get(ctx context.Context, caller service.Caller, docID uuid.UUID) (*domain.DocumentDetail, error) {
	args := m.Called(ctx, caller, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentDetail), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, caller service.Caller, docID uuid.UUID) error {
	args := m.Called(ctx, caller, docID)
	return args.Error(0)
}

func (m *MockDocumentService) Reanalyze(ctx context.Context, caller service.Caller, docID uuid.UUID) (*domain.DocumentDetail, error) {
	args := m.Called(ctx, caller, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentDetail), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, caller service.Caller, docID uuid.UUID) (*service.DocumentContent, error) {
	args := m.Called(ctx, caller, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentContent), args.Error(1)
}

// MockEventService is a mock implementation of service.EventService.
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) LogDocumentUpload(ctx context.Context, docID uuid.UUID, filename string, userID uuid.UUID) {
	m.Called(ctx, docID, filename, userID)
}

func (m *MockEventService) LogAIAnalysis(ctx context.Context, docID uuid.UUID, docType string, userID *uuid.UUID, analysisErr error) {
	m.Called(ctx, docID, docType, userID, analysisErr)
}

func (m *MockEventService) LogUserInteraction(ctx context.Context, action string, userID uuid.UUID, docID *uuid.UUID, details map[string]any) {
	m.Called(ctx, action, userID, docID, details)
}

func (m *MockEventService) LogSystem(ctx context.Context, description string, metadata map[string]any) {
	m.Called(ctx, description, metadata)
}

func (m *MockEventService) List(ctx context.Context, filter domain.EventFilter, offset, limit int) ([]domain.EventLog, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EventLog), args.Int(1), args.Error(2)
}

func (m *MockEventService) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.EventLog, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventLog), args.Error(1)
}

func (m *MockEventService) Types() []service.EventTypeInfo {
	args := m.Called()
	return args.Get(0).([]service.EventTypeInfo)
}

func (m *MockEventService) Stats(ctx context.Context, from, to *time.Time) (*domain.EventStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventStats), args.Error(1)
}

func (m *MockEventService) Export(ctx context.Context, w io.Writer, filter domain.EventFilter, requestedBy uuid.UUID) error {
	args := m.Called(ctx, w, filter, requestedBy)
	return args.Error(0)
}
