// Package analyzer classifies uploaded documents and extracts structured data
// from them through an AI completer.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"onecore/internal/domain"
	"onecore/internal/port"
)

// NotConfiguredText is reported as raw text when no AI provider is configured.
const NotConfiguredText = "AI service not configured. Please set OPENAI_API_KEY."

// Operation labels passed with each completion request.
const (
	OpClassify       = "classify"
	OpExtractInvoice = "extract_invoice"
	OpExtractInfo    = "extract_info"
)

const pdfContentType = "application/pdf"

// Analyzer runs the classify then extract pipeline for one document at a time.
// It is safe for concurrent use; the only shared state is the injected completer.
type Analyzer struct {
	completer   port.Completer
	extractor   port.TextExtractor
	callTimeout time.Duration
}

// New creates an Analyzer. A nil completer means AI is not configured and every
// analysis reports DocumentTypePending. callTimeout bounds each completion call;
// zero leaves only the caller's deadline.
func New(completer port.Completer, extractor port.TextExtractor, callTimeout time.Duration) *Analyzer {
	return &Analyzer{
		completer:   completer,
		extractor:   extractor,
		callTimeout: callTimeout,
	}
}

// Available reports whether an AI provider is configured.
func (a *Analyzer) Available() bool {
	return a.completer != nil
}

// input is the prepared user content shared by the three calls.
type input struct {
	text  string
	image string
}

func (in input) request(op, systemPrompt, lead string, limit int) port.CompletionRequest {
	req := port.CompletionRequest{Operation: op, SystemPrompt: systemPrompt}
	if in.image != "" {
		req.Text = lead
		req.ImageDataURI = in.image
		return req
	}
	req.Text = lead + "\n\n" + truncateRunes(in.text, limit)
	return req
}

// Analyze classifies content and extracts the fields for its category. It never
// fails: a failed classification falls back to DocumentTypeInfo with zero
// confidence, and a failed extraction leaves the data field empty.
func (a *Analyzer) Analyze(ctx context.Context, content []byte, contentType, filename string) *domain.DocumentAnalysisResult {
	if !a.Available() {
		return &domain.DocumentAnalysisResult{
			DocumentType: domain.DocumentTypePending,
			Confidence:   0,
			RawText:      NotConfiguredText,
		}
	}

	var in input
	switch {
	case contentType == pdfContentType:
		if a.extractor != nil {
			in.text = a.extractor.ExtractText(content)
		}
	case strings.HasPrefix(contentType, "image/"):
		in.image = EncodeDataURI(content, contentType)
	}

	result := &domain.DocumentAnalysisResult{RawText: in.text}

	cls, err := a.classify(ctx, in)
	if err != nil {
		log.Printf("analyzer.Analyze: %s: classification failed: %v", filename, err)
		cls = &classification{DocumentType: domain.DocumentTypeInfo, Confidence: 0}
	}
	result.DocumentType = cls.DocumentType
	result.Confidence = cls.Confidence

	if cls.DocumentType == domain.DocumentTypeInvoice {
		inv, err := a.extractInvoice(ctx, in)
		if err != nil {
			log.Printf("analyzer.Analyze: %s: invoice extraction failed: %v", filename, err)
		}
		result.InvoiceData = inv
		return result
	}

	info, err := a.extractInfo(ctx, in)
	if err != nil {
		log.Printf("analyzer.Analyze: %s: info extraction failed: %v", filename, err)
	}
	result.InfoData = info
	return result
}

func (a *Analyzer) classify(ctx context.Context, in input) (*classification, error) {
	text, err := a.complete(ctx, in.request(OpClassify, classificationPrompt, classifyLead, classifyTextLimit))
	if err != nil {
		return nil, err
	}
	return parseClassification(text)
}

func (a *Analyzer) extractInvoice(ctx context.Context, in input) (*domain.InvoiceData, error) {
	text, err := a.complete(ctx, in.request(OpExtractInvoice, invoiceExtractionPrompt, extractInvoiceLead, extractTextLimit))
	if err != nil {
		return nil, err
	}
	return parseInvoice(text)
}

func (a *Analyzer) extractInfo(ctx context.Context, in input) (*domain.InfoData, error) {
	text, err := a.complete(ctx, in.request(OpExtractInfo, infoExtractionPrompt, extractInfoLead, extractTextLimit))
	if err != nil {
		return nil, err
	}
	return parseInfo(text)
}

// complete runs one completion under the per-call timeout, turning a panic in
// the provider into an error so that no call can abort the pipeline.
func (a *Analyzer) complete(ctx context.Context, req port.CompletionRequest) (text string, err error) {
	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: completer panicked: %v", req.Operation, r)
		}
	}()
	return a.completer.Complete(ctx, req)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
