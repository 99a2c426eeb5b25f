package csvvalidator

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/domain"
)

func byType(results []domain.ValidationResult, t domain.ValidationType) []domain.ValidationResult {
	var out []domain.ValidationResult
	for _, r := range results {
		if r.ValidationType == t {
			out = append(out, r)
		}
	}
	return out
}

func TestValidateAndProcess_CleanFile(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("name,precio,cantidad\nA,100.50,10\nB,200.00,5\nC,3,1\n"), "clean.csv")

	assert.Len(t, rows, 3)
	assert.Empty(t, results)

	v, ok := rows[1].Get("precio")
	require.True(t, ok)
	assert.Equal(t, "200.00", v)
	assert.Equal(t, []string{"name", "precio", "cantidad"}, rows[0].Columns())
}

func TestValidateAndProcess_DuplicateRow(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("name,precio,cantidad\nA,100.50,10\nB,200.00,5\nA,100.50,10\n"), "dup.csv")

	assert.Len(t, rows, 3)
	require.Len(t, results, 1)
	dup := results[0]
	assert.Equal(t, domain.ValidationDuplicateRow, dup.ValidationType)
	assert.Equal(t, domain.SeverityWarning, dup.Severity)
	require.NotNil(t, dup.RowNumber)
	assert.Equal(t, 4, *dup.RowNumber)
	assert.Nil(t, dup.ColumnName)
	assert.Contains(t, dup.Message, "duplicada")
	assert.Contains(t, dup.Message, "2")
}

func TestValidateAndProcess_EmptyNumericValueSkipsTypeCheck(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("name,precio\nA,,\n"), "empty.csv")

	assert.Len(t, rows, 1)
	empties := byType(results, domain.ValidationEmptyValue)
	require.Len(t, empties, 1)
	require.NotNil(t, empties[0].ColumnName)
	assert.Equal(t, "precio", *empties[0].ColumnName)
	assert.Equal(t, 2, *empties[0].RowNumber)
	assert.Equal(t, domain.SeverityWarning, empties[0].Severity)
	assert.Empty(t, byType(results, domain.ValidationInvalidType))
}

func TestValidateAndProcess_WhitespaceIsEmpty(t *testing.T) {
	e := NewEngine(nil)
	_, results := e.ValidateAndProcess([]byte("name,note\nA,   \n"), "ws.csv")

	require.Len(t, results, 1)
	assert.Equal(t, domain.ValidationEmptyValue, results[0].ValidationType)
	assert.Equal(t, "note", *results[0].ColumnName)
}

func TestValidateAndProcess_ShortRecordIsEmptyValue(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("name,precio\nA\n"), "short.csv")

	require.Len(t, rows, 1)
	_, ok := rows[0].Get("precio")
	assert.False(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ValidationEmptyValue, results[0].ValidationType)
}

func TestValidateAndProcess_InvalidType(t *testing.T) {
	e := NewEngine(nil)
	_, results := e.ValidateAndProcess([]byte("name,precio\nA,abc\n"), "bad.csv")

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, domain.ValidationInvalidType, r.ValidationType)
	assert.Equal(t, domain.SeverityWarning, r.Severity)
	assert.Equal(t, "precio", *r.ColumnName)
	assert.Contains(t, r.Message, "abc")
}

func TestValidateAndProcess_CommaDecimalAccepted(t *testing.T) {
	e := NewEngine(nil)

	rows, results := e.ValidateAndProcess([]byte("name,precio\nA,100,50\n"), "split.csv")
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("precio")
	assert.Equal(t, "100", v)
	assert.Empty(t, results)

	rows, results = e.ValidateAndProcess([]byte("name,precio\nA,\"100,50\"\n"), "quoted.csv")
	require.Len(t, rows, 1)
	v, _ = rows[0].Get("precio")
	assert.Equal(t, "100,50", v)
	assert.Empty(t, results)
}

func TestValidateAndProcess_NumericColumnMatchIsCaseInsensitive(t *testing.T) {
	e := NewEngine(nil)
	_, results := e.ValidateAndProcess([]byte("Name,PRECIO,Amount\nA,x,y\n"), "case.csv")

	invalid := byType(results, domain.ValidationInvalidType)
	require.Len(t, invalid, 2)
	assert.Equal(t, "PRECIO", *invalid[0].ColumnName)
	assert.Equal(t, "Amount", *invalid[1].ColumnName)
}

func TestValidateAndProcess_CustomNumericColumns(t *testing.T) {
	e := NewEngine([]string{" Peso "})
	_, results := e.ValidateAndProcess([]byte("peso,precio\nmucho,caro\n"), "custom.csv")

	invalid := byType(results, domain.ValidationInvalidType)
	require.Len(t, invalid, 1)
	assert.Equal(t, "peso", *invalid[0].ColumnName)
}

func TestValidateAndProcess_ZeroBytes(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess(nil, "empty.csv")

	assert.Empty(t, rows)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ValidationStructureError, results[0].ValidationType)
	assert.Equal(t, domain.SeverityError, results[0].Severity)
	assert.Nil(t, results[0].RowNumber)
}

func TestValidateAndProcess_HeaderOnly(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("a,b,c\n"), "header.csv")

	assert.Empty(t, rows)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ValidationEmptyFile, results[0].ValidationType)
	assert.Equal(t, domain.SeverityError, results[0].Severity)
}

func TestValidateAndProcess_Latin1Fallback(t *testing.T) {
	e := NewEngine(nil)
	// "descripción" and "niño" encoded as ISO-8859-1.
	content := []byte("descripci\xf3n,precio\nni\xf1o,10\n")

	rows, results := e.ValidateAndProcess(content, "latin1.csv")

	assert.Empty(t, results)
	require.Len(t, rows, 1)
	v, ok := rows[0].Get("descripción")
	require.True(t, ok)
	assert.Equal(t, "niño", v)
}

func TestValidateAndProcess_ByteOrderMarkDropped(t *testing.T) {
	e := NewEngine(nil)
	_, results := e.ValidateAndProcess([]byte("\xef\xbb\xbfprecio\nabc\n"), "bom.csv")

	require.Len(t, results, 1)
	assert.Equal(t, "precio", *results[0].ColumnName)
	assert.Equal(t, domain.ValidationInvalidType, results[0].ValidationType)
}

func TestValidateAndProcess_QuotedFields(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("name,note\n\"Doe, John\",\"line one\nline two\"\n\"say \"\"hi\"\"\",x\n"), "quotes.csv")

	assert.Empty(t, results)
	require.Len(t, rows, 2)
	name, _ := rows[0].Get("name")
	note, _ := rows[0].Get("note")
	assert.Equal(t, "Doe, John", name)
	assert.Equal(t, "line one\nline two", note)
	name, _ = rows[1].Get("name")
	assert.Equal(t, `say "hi"`, name)
}

func TestValidateAndProcess_BareQuotesAreLiteral(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte("name,note\nA,ok\nB,bad\"quote\nTubo,5\" pulgadas\n"), "quotes.csv")

	assert.Empty(t, results)
	require.Len(t, rows, 3)
	note, _ := rows[1].Get("note")
	assert.Equal(t, `bad"quote`, note)
	note, _ = rows[2].Get("note")
	assert.Equal(t, `5" pulgadas`, note)
}

func TestValidateAndProcess_ParseErrorKeepsEarlierRows(t *testing.T) {
	e := NewEngine(nil)
	huge := strings.Repeat("x", MaxFieldSize+1)
	rows, results := e.ValidateAndProcess([]byte("name,note\nA,ok\nB,"+huge+"\nC,never\n"), "broken.csv")

	require.Len(t, rows, 1)
	name, _ := rows[0].Get("name")
	assert.Equal(t, "A", name)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ValidationParseError, results[0].ValidationType)
	assert.Equal(t, domain.SeverityError, results[0].Severity)
	assert.Nil(t, results[0].RowNumber)
	assert.Contains(t, results[0].Message, "Error al parsear CSV")
	assert.Contains(t, results[0].Message, "field larger than field limit (131072)")
}

func TestValidateAndProcess_FieldAtLimitIsAccepted(t *testing.T) {
	e := NewEngine(nil)
	full := strings.Repeat("x", MaxFieldSize)
	rows, results := e.ValidateAndProcess([]byte("name,note\nA,"+full+"\n"), "limit.csv")

	assert.Empty(t, results)
	require.Len(t, rows, 1)
}

func TestValidateAndProcess_OversizedHeaderIsParseError(t *testing.T) {
	e := NewEngine(nil)
	rows, results := e.ValidateAndProcess([]byte(strings.Repeat("h", MaxFieldSize+1)+"\nA\n"), "header.csv")

	assert.Empty(t, rows)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ValidationParseError, results[0].ValidationType)
}

func TestReadFailure(t *testing.T) {
	t.Run("csv parse error", func(t *testing.T) {
		r := readFailure(&csv.ParseError{StartLine: 3, Line: 3, Column: 2, Err: csv.ErrQuote})
		assert.Equal(t, domain.ValidationParseError, r.ValidationType)
		assert.Equal(t, domain.SeverityError, r.Severity)
		assert.Contains(t, r.Message, "line 3")
	})

	t.Run("other error", func(t *testing.T) {
		r := readFailure(errors.New("disk read interrupted"))
		assert.Equal(t, domain.ValidationUnknownError, r.ValidationType)
		assert.Equal(t, domain.SeverityError, r.Severity)
		assert.Equal(t, "Error desconocido: disk read interrupted", r.Message)
		assert.Nil(t, r.RowNumber)
		assert.Nil(t, r.ColumnName)
	})
}

func TestValidateAndProcess_FindingsInRowOrder(t *testing.T) {
	e := NewEngine(nil)
	_, results := e.ValidateAndProcess([]byte("name,precio\nA,1\nA,1\n,x\n"), "order.csv")

	require.Len(t, results, 3)
	assert.Equal(t, domain.ValidationDuplicateRow, results[0].ValidationType)
	assert.Equal(t, 3, *results[0].RowNumber)
	assert.Equal(t, domain.ValidationEmptyValue, results[1].ValidationType)
	assert.Equal(t, 4, *results[1].RowNumber)
	assert.Equal(t, domain.ValidationInvalidType, results[2].ValidationType)
	assert.Equal(t, 4, *results[2].RowNumber)
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"100", true},
		{"100.50", true},
		{"100,50", true},
		{" 12 ", true},
		{"-3.5", true},
		{"1e3", true},
		{"abc", false},
		{"1,000.50", false},
		{"", false},
		{"12abc", false},
		{"0x1p3", false},
		{"-0X1P3", false},
		{"0x10", false},
		{"0.5", true},
		{"+0,5", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumeric(tt.in))
		})
	}
}

func TestSeverityInvariant(t *testing.T) {
	errorsOnly := []domain.ValidationType{
		domain.ValidationStructureError, domain.ValidationEmptyFile,
		domain.ValidationParseError, domain.ValidationUnknownError,
	}
	for _, vt := range errorsOnly {
		assert.Equal(t, domain.SeverityError, vt.Severity(), vt)
	}
	warnings := []domain.ValidationType{
		domain.ValidationEmptyValue, domain.ValidationDuplicateRow, domain.ValidationInvalidType,
	}
	for _, vt := range warnings {
		assert.Equal(t, domain.SeverityWarning, vt.Severity(), vt)
	}
}
