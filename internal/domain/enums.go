package domain

// UserRole represents the access level of a user.
type UserRole string

const (
	RoleUser     UserRole = "user"
	RoleUploader UserRole = "uploader"
	RoleAdmin    UserRole = "admin"
)

// roleLevel orders roles so that a higher level implies every lower one.
var roleLevel = map[UserRole]int{
	RoleUser:     1,
	RoleUploader: 2,
	RoleAdmin:    3,
}

// ValidRole reports whether r is a known role.
func ValidRole(r UserRole) bool {
	_, ok := roleLevel[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
func (r UserRole) AtLeast(min UserRole) bool {
	have, ok := roleLevel[r]
	if !ok {
		return false
	}
	return have >= roleLevel[min]
}

// ValidationType classifies a CSV validation finding.
type ValidationType string

const (
	ValidationStructureError ValidationType = "structure_error"
	ValidationEmptyFile      ValidationType = "empty_file"
	ValidationEmptyValue     ValidationType = "empty_value"
	ValidationDuplicateRow   ValidationType = "duplicate_row"
	ValidationInvalidType    ValidationType = "invalid_type"
	ValidationParseError     ValidationType = "parse_error"
	ValidationUnknownError   ValidationType = "unknown_error"
)

// Severity returns the fixed severity for a validation type.
func (t ValidationType) Severity() Severity {
	switch t {
	case ValidationEmptyValue, ValidationDuplicateRow, ValidationInvalidType:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Severity is either blocking (error) or informational (warning).
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// UploadStatus tracks an uploaded CSV file through processing.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// DocumentType is the classification assigned to an analyzed document.
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "factura"
	DocumentTypeInfo    DocumentType = "informacion"
	DocumentTypePending DocumentType = "pendiente"
)

// AnalysisStatus tracks a document through AI analysis.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// ValidAnalysisStatus reports whether s is a known analysis status.
func ValidAnalysisStatus(s AnalysisStatus) bool {
	switch s {
	case AnalysisStatusPending, AnalysisStatusProcessing, AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	}
	return false
}

// Sentiment is the tone detected in an informational document.
type Sentiment string

const (
	SentimentPositive Sentiment = "positivo"
	SentimentNegative Sentiment = "negativo"
	SentimentNeutral  Sentiment = "neutral"
)

// EventType categorizes audit log entries.
type EventType string

const (
	EventTypeDocumentUpload  EventType = "subida_documento"
	EventTypeAIAnalysis      EventType = "analisis_ia"
	EventTypeUserInteraction EventType = "interaccion_usuario"
	EventTypeSystem          EventType = "sistema"
)

// AllEventTypes lists event types in display order.
var AllEventTypes = []EventType{
	EventTypeDocumentUpload,
	EventTypeAIAnalysis,
	EventTypeUserInteraction,
	EventTypeSystem,
}

var eventTypeLabels = map[EventType]string{
	EventTypeDocumentUpload:  "Subida de Documento",
	EventTypeAIAnalysis:      "Análisis IA",
	EventTypeUserInteraction: "Interacción de Usuario",
	EventTypeSystem:          "Sistema",
}

// Label returns the human-readable name of the event type, or the raw value
// when the type is unknown.
func (t EventType) Label() string {
	if l, ok := eventTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ValidEventType reports whether t is a known event type.
func ValidEventType(t EventType) bool {
	_, ok := eventTypeLabels[t]
	return ok
}
