package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/domain"
	"onecore/internal/port"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/files/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/abc", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/files/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RecordDocumentAnalyzed(domain.DocumentTypeInvoice)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `onecore_documents_analyzed_total{document_type="factura"} 1`))
}

func TestRecordCSVValidation(t *testing.T) {
	m := New()
	row := 3
	m.RecordCSVValidation([]domain.ValidationResult{
		{ValidationType: domain.ValidationDuplicateRow, RowNumber: &row, Severity: domain.SeverityWarning},
	})
	m.RecordCSVValidation([]domain.ValidationResult{
		{ValidationType: domain.ValidationEmptyFile, Severity: domain.SeverityError},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.csvFilesTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.csvFilesTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.csvValidationsTotal.WithLabelValues("duplicate_row", "warning")))
}

func TestRecord_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCSVValidation(nil)
		m.RecordDocumentAnalyzed(domain.DocumentTypeInfo)
	})
}

type completerFunc func(ctx context.Context, req port.CompletionRequest) (string, error)

func (f completerFunc) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	return f(ctx, req)
}

func TestInstrumentCompleter(t *testing.T) {
	m := New()
	next := completerFunc(func(_ context.Context, req port.CompletionRequest) (string, error) {
		switch req.Operation {
		case "extract_info":
			return "", errors.New("bad gateway")
		case "extract_invoice":
			return "", context.DeadlineExceeded
		}
		return "{}", nil
	})

	c := InstrumentCompleter(next, m)
	_, _ = c.Complete(context.Background(), port.CompletionRequest{Operation: "classify"})
	_, _ = c.Complete(context.Background(), port.CompletionRequest{Operation: "extract_info"})
	_, _ = c.Complete(context.Background(), port.CompletionRequest{Operation: "extract_invoice"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCallsTotal.WithLabelValues("classify", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCallsTotal.WithLabelValues("extract_info", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCallsTotal.WithLabelValues("extract_invoice", "timeout")))
}

func TestInstrumentCompleter_NilStaysNil(t *testing.T) {
	assert.Nil(t, InstrumentCompleter(nil, New()))
}
