package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"onecore/internal/handler"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	up := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	down := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))

	tests := []struct {
		name   string
		call   gin.HandlerFunc
		status int
	}{
		{"liveness ignores db", down.Liveness, http.StatusOK},
		{"ready", up.Readiness, http.StatusOK},
		{"not ready", down.Readiness, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
			tt.call(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
