package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"onecore/internal/service"
)

// FileHandler handles CSV intake endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /api/v1/files/upload
// @Summary Upload a CSV file
// @Description Validate a CSV file and store it with its rows and validation results.
// @Description Files with error-severity validations are rejected with 422 and nothing is stored.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param param1 formData string true "First batch parameter"
// @Param param2 formData string true "Second batch parameter"
// @Success 201 {object} Response{data=service.CSVUploadResult} "File accepted"
// @Failure 400 {object} ErrorResponseBody "Missing file or parameters, unsupported type or empty file"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Uploader role required"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Blocking validation errors"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
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

	param1 := strings.TrimSpace(c.PostForm("param1"))
	param2 := strings.TrimSpace(c.PostForm("param2"))
	if param1 == "" || param2 == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "param1 and param2 are required")
		return
	}

	result, err := h.fileService.Upload(c.Request.Context(), caller, service.CSVUploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
		Param1:   param1,
		Param2:   param2,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// List handles GET /api/v1/files
// @Summary List CSV files
// @Description List uploaded CSV files. Admins see every file; other users only their own.
// @Tags files
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(100)
// @Success 200 {object} Response{data=[]domain.UploadedFile,meta=PagMeta} "List of files"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	files, total, err := h.fileService.List(c.Request.Context(), caller, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, files, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/files/:id
// @Summary Get CSV file
// @Tags files
// @Produce json
// @Param id path string true "File ID (UUID)"
// @Success 200 {object} Response{data=domain.UploadedFile} "File metadata"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Not the owner"
// @Failure 404 {object} ErrorResponseBody "File not found"
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) GetByID(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "file")
	if !ok {
		return
	}

	file, err := h.fileService.GetByID(c.Request.Context(), caller, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, file)
}

// Validations handles GET /api/v1/files/:id/validations
// @Summary List CSV validation results
// @Tags files
// @Produce json
// @Param id path string true "File ID (UUID)"
// @Success 200 {object} Response{data=[]domain.FileValidation} "Validation results"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Not the owner"
// @Failure 404 {object} ErrorResponseBody "File not found"
// @Security BearerAuth
// @Router /files/{id}/validations [get]
func (h *FileHandler) Validations(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "file")
	if !ok {
		return
	}

	validations, err := h.fileService.Validations(c.Request.Context(), caller, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, validations)
}

// Rows handles GET /api/v1/files/:id/rows
// @Summary List stored CSV rows
// @Tags files
// @Produce json
// @Param id path string true "File ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(100)
// @Success 200 {object} Response{data=[]domain.CSVRow,meta=PagMeta} "Rows in file order"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Not the owner"
// @Failure 404 {object} ErrorResponseBody "File not found"
// @Security BearerAuth
// @Router /files/{id}/rows [get]
func (h *FileHandler) Rows(c *gin.Context) {
	caller, ok := extractCaller(c)
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "file")
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	rows, total, err := h.fileService.Rows(c.Request.Context(), caller, fileID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, rows, PagMeta{Total: total, Offset: offset, Limit: limit})
}
