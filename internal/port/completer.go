package port

import (
	"context"

	"onecore/internal/domain"
)

// CompletionRequest is a single prompt sent to an AI provider. Text is the user
// message; ImageDataURI, when set, attaches an image to it.
type CompletionRequest struct {
	// Operation labels the call for metrics and logs (classify, extract_invoice, ...).
	Operation    string
	SystemPrompt string
	Text         string
	ImageDataURI string
}

// Completer sends a prompt to a text or vision capable model and returns the
// raw completion text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TextExtractor pulls plain text out of a PDF. It never fails: unreadable
// input yields an empty string.
type TextExtractor interface {
	ExtractText(content []byte) string
}

// DocumentAnalyzer classifies a document and extracts its fields. Analyze
// never fails; a degraded analysis is reported in the result.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, content []byte, contentType, filename string) *domain.DocumentAnalysisResult
	Available() bool
}
