// Package pdftext extracts plain text from PDF documents.
package pdftext

import (
	"bytes"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor reads the text layer of a PDF. Scanned PDFs without a text layer
// yield an empty string.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractText returns the text of every page joined by newlines. It never
// fails: corrupt or encrypted input is logged and yields "".
func (e *Extractor) ExtractText(content []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pdftext.ExtractText: recovered from panic: %v", r)
			text = ""
		}
	}()

	if len(content) == 0 {
		return ""
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		log.Printf("pdftext.ExtractText: opening pdf: %v", err)
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("pdftext.ExtractText: page %d: %v", i, err)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}
	if sb.Len() > 0 {
		return strings.TrimSpace(sb.String())
	}

	// Fall back to the whole-document reader, which handles some files whose
	// page tree is not walkable.
	r, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	all, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(all))
}
