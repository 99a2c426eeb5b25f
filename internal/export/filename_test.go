package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "factura.pdf", "factura.pdf"},
		{"spaces and accents", "Factura Enero ñ 2024.PDF", "Factura_Enero_2024.pdf"},
		{"path components", "../../etc/passwd", "passwd"},
		{"quotes", `a"b;c.png`, "a_b_c.png"},
		{"nothing left", "???.jpg", "archivo.jpg"},
		{"no extension", "notas", "notas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("a", 150) + ".csv")
	assert.Equal(t, strings.Repeat("a", 100)+".csv", got)
}

func TestEventsFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "historico_eventos_20240309_140507.xlsx", EventsFilename(ts))
}
