package domain

// ValidationResult is a single finding produced while validating a CSV file.
type ValidationResult struct {
	ValidationType ValidationType `json:"validation_type"`
	RowNumber      *int           `json:"row_number"`
	ColumnName     *string        `json:"column_name"`
	Message        string         `json:"message"`
	Severity       Severity       `json:"severity"`
}

// HasErrors reports whether any result is error severity.
func HasErrors(results []ValidationResult) bool {
	for i := range results {
		if results[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// BlockingResults returns only the error-severity results.
func BlockingResults(results []ValidationResult) []ValidationResult {
	var out []ValidationResult
	for i := range results {
		if results[i].Severity == SeverityError {
			out = append(out, results[i])
		}
	}
	return out
}

// InvoiceProduct is a single line item of an invoice.
type InvoiceProduct struct {
	Quantity  *float64 `json:"quantity"`
	Name      *string  `json:"name"`
	UnitPrice *float64 `json:"unit_price"`
	Total     *float64 `json:"total"`
}

// InvoiceData is the structured content extracted from a factura.
// InvoiceDate is kept as written on the document.
type InvoiceData struct {
	ClientName      *string          `json:"client_name"`
	ClientAddress   *string          `json:"client_address"`
	ProviderName    *string          `json:"provider_name"`
	ProviderAddress *string          `json:"provider_address"`
	InvoiceNumber   *string          `json:"invoice_number"`
	InvoiceDate     *string          `json:"invoice_date"`
	InvoiceTotal    *float64         `json:"invoice_total"`
	Currency        string           `json:"currency"`
	Products        []InvoiceProduct `json:"products"`
}

// InfoData is the structured content extracted from an informational document.
type InfoData struct {
	Description    *string    `json:"description"`
	Summary        *string    `json:"summary"`
	Sentiment      *Sentiment `json:"sentiment"`
	SentimentScore *float64   `json:"sentiment_score"`
	KeyTopics      []string   `json:"key_topics"`
}

// DocumentAnalysisResult is the outcome of classifying and extracting a document.
// At most one of InvoiceData and InfoData is set.
type DocumentAnalysisResult struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"`
	RawText      string       `json:"raw_text"`
	InvoiceData  *InvoiceData `json:"invoice_data"`
	InfoData     *InfoData    `json:"info_data"`
}
