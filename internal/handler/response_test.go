package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/domain"
	"onecore/internal/handler"
	"onecore/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setAuthContext(c *gin.Context, userID uuid.UUID, role domain.UserRole) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, string(role))
	c.Set(middleware.ContextKeyUsername, "ana")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeBody(t, w)
	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %s", w.Body.String())
	return errObj["code"].(string)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{domain.ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND"},
		{fmt.Errorf("repo.GetByID: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrEmptyFile, http.StatusBadRequest, "EMPTY_FILE"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrDuplicateUsername, http.StatusConflict, "DUPLICATE_USERNAME"},
		{domain.ErrInvalidFilter, http.StatusBadRequest, "INVALID_FILTER"},
		{&domain.CSVRejectedError{}, http.StatusUnprocessableEntity, "CSV_VALIDATION_FAILED"},
		{fmt.Errorf("%w: disk full", domain.ErrAnalysisFailed), http.StatusInternalServerError, "ANALYSIS_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestHandleError_CSVRejectedCarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	row := 3
	col := "precio"

	handler.HandleError(c, &domain.CSVRejectedError{Errors: []domain.ValidationResult{{
		ValidationType: domain.ValidationStructureError,
		RowNumber:      &row,
		ColumnName:     &col,
		Message:        "Fila con columnas de más",
		Severity:       domain.SeverityError,
	}}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["success"])
	details := resp["error"].(map[string]any)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "structure_error", details[0].(map[string]any)["validation_type"])
	assert.Equal(t, float64(3), details[0].(map[string]any)["row_number"])
}
