package analyzer

var (
	ClassificationPrompt = classificationPrompt
	ClassifyLead         = classifyLead
	ExtractInvoiceLead   = extractInvoiceLead
	ExtractInfoLead      = extractInfoLead
)
