package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"onecore/internal/domain"
	"onecore/internal/port"
)

// MockCompleter is a mock implementation of port.Completer.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(content []byte) string {
	args := m.Called(content)
	return args.String(0)
}

// MockDocumentAnalyzer is a mock implementation of port.DocumentAnalyzer.
type MockDocumentAnalyzer struct {
	mock.Mock
}

func (m *MockDocumentAnalyzer) Analyze(ctx context.Context, content []byte, contentType, filename string) *domain.DocumentAnalysisResult {
	args := m.Called(ctx, content, contentType, filename)
	return args.Get(0).(*domain.DocumentAnalysisResult)
}

func (m *MockDocumentAnalyzer) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
