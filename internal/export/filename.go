package export

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// nonSafe matches characters that are not alphanumeric, hyphen, underscore or dot.
var nonSafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename reduces name to characters safe in a Content-Disposition
// header. The extension is kept; the stem is truncated to 100 characters.
// An empty result becomes "archivo".
func SanitizeFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	s := nonSafe.ReplaceAllString(stem, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "archivo"
	}
	return s + nonSafe.ReplaceAllString(ext, "")
}

// EventsFilename returns the download name of an event export generated at t.
// Format: historico_eventos_{YYYYMMDD_HHMMSS}.xlsx
func EventsFilename(t time.Time) string {
	return "historico_eventos_" + t.Format("20060102_150405") + ".xlsx"
}
