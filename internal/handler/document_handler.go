package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"onecore/internal/domain"
	"onecore/internal/export"
	"onecore/internal/service"
)

// DocumentHandler handles document analysis endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/documents/upload
// @Summary Upload a document for analysis
// @Description Store a PDF or image, classify it as factura or informacion and extract its fields.
// @Description Without a configured AI provider the document is stored as pendiente.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document (PDF, JPG, JPEG or PNG)"
// @Success 201 {object} Response{data=domain.DocumentDetail} "Document analyzed"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type or empty file"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Uploader role required"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 500 {object} ErrorResponseBody "Upload or analysis persistence failed"
// @Security BearerAuth
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	detail, err := h.documentService.Upload(c.Request.Context(), caller, service.DocumentUploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, detail)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List the caller's documents, newest first
// @Tags documents
// @Produce json
// @Param status query string false "Analysis status" Enums(pending, processing, completed, failed)
// @Param type query string false "Document type" Enums(factura, informacion, pendiente)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(100)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	docs, total, err := h.documentService.List(c.Request.Context(), caller, service.DocumentListFilter{
		Status:       domain.AnalysisStatus(c.Query("status")),
		DocumentType: domain.DocumentType(c.Query("type")),
	}, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document
// @Description Get a document with its extracted invoice or info data
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.DocumentDetail} "Document details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "document")
	if !ok {
		return
	}

	detail, err := h.documentService.Get(c.Request.Context(), caller, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete document
// @Description Delete a document, its stored file and its extraction
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Uploader role required"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "document")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), caller, docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "document deleted successfully"})
}

// Reanalyze handles POST /api/v1/documents/:id/reanalyze
// @Summary Reanalyze document
// @Description Discard the current extraction and run the analysis again on the stored file
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.DocumentDetail} "Document reanalyzed"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Uploader role required"
// @Failure 404 {object} ErrorResponseBody "Document or stored file not found"
// @Security BearerAuth
// @Router /documents/{id}/reanalyze [post]
func (h *DocumentHandler) Reanalyze(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "document")
	if !ok {
		return
	}

	detail, err := h.documentService.Reanalyze(c.Request.Context(), caller, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Download handles GET /api/v1/documents/:id/download
// @Summary Download document
// @Description Stream the stored file back with its original name
// @Tags documents
// @Produce octet-stream
// @Param id path string true "Document ID (UUID)"
// @Success 200 {file} binary "Document content"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "document")
	if !ok {
		return
	}

	content, err := h.documentService.Download(c.Request.Context(), caller, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", attachment(content.Filename))
	c.Data(http.StatusOK, content.ContentType, content.Content)
}

// attachment builds a Content-Disposition value with a header-safe filename.
func attachment(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, export.SanitizeFilename(filename))
}
