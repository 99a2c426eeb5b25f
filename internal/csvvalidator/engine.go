// Package csvvalidator parses uploaded CSV files and reports structural and
// data-quality problems as validation results.
package csvvalidator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"onecore/internal/domain"
)

// MaxFieldSize is the longest field accepted, in bytes.
const MaxFieldSize = 131072

var errFieldTooLarge = fmt.Errorf("field larger than field limit (%d)", MaxFieldSize)

// DefaultNumericColumns are the header names whose values must parse as numbers.
var DefaultNumericColumns = []string{"precio", "cantidad", "monto", "total", "price", "quantity", "amount"}

// Engine validates CSV content. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	numeric map[string]struct{}
}

// NewEngine creates an Engine. Column names are matched case-insensitively;
// an empty list selects DefaultNumericColumns.
func NewEngine(numericColumns []string) *Engine {
	if len(numericColumns) == 0 {
		numericColumns = DefaultNumericColumns
	}
	numeric := make(map[string]struct{}, len(numericColumns))
	for _, c := range numericColumns {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			numeric[c] = struct{}{}
		}
	}
	return &Engine{numeric: numeric}
}

// ValidateAndProcess decodes and parses content, returning the data rows and
// every finding. It never fails: malformed input is reported as error-severity
// results, and rows read before a failure are still returned.
func (e *Engine) ValidateAndProcess(content []byte, filename string) (rows []Row, results []domain.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("csvvalidator.ValidateAndProcess: %s: unexpected failure: %v", filename, r)
			results = append(results, fileResult(domain.ValidationUnknownError, fmt.Sprintf("Error desconocido: %v", r)))
		}
	}()

	reader := csv.NewReader(strings.NewReader(decode(content)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := readRecord(reader)
	if errors.Is(err, io.EOF) || (err == nil && len(header) == 0) {
		return nil, []domain.ValidationResult{
			fileResult(domain.ValidationStructureError, "El archivo CSV no tiene encabezados"),
		}
	}
	if err != nil {
		return nil, []domain.ValidationResult{readFailure(err)}
	}

	seen := make(map[string]int)
	rowNumber := 1
	for {
		record, err := readRecord(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, append(results, readFailure(err))
		}
		rowNumber++

		row := buildRow(header, record)
		rows = append(rows, row)

		fp := Fingerprint(row)
		if first, dup := seen[fp]; dup {
			results = append(results, rowResult(domain.ValidationDuplicateRow, rowNumber, nil,
				fmt.Sprintf("Fila duplicada (igual a fila %d)", first)))
		} else {
			seen[fp] = rowNumber
		}

		results = append(results, e.checkCells(row, rowNumber)...)
	}

	if len(rows) == 0 {
		results = append(results, fileResult(domain.ValidationEmptyFile, "El archivo CSV no contiene datos"))
	}
	return rows, results
}

func (e *Engine) checkCells(row Row, rowNumber int) []domain.ValidationResult {
	var results []domain.ValidationResult
	for _, c := range row.cells {
		column := c.column
		if !c.present || strings.TrimSpace(c.value) == "" {
			results = append(results, rowResult(domain.ValidationEmptyValue, rowNumber, &column,
				fmt.Sprintf("Valor vacío en columna '%s'", c.column)))
			continue
		}
		if _, ok := e.numeric[strings.ToLower(c.column)]; ok && !IsNumeric(c.value) {
			results = append(results, rowResult(domain.ValidationInvalidType, rowNumber, &column,
				fmt.Sprintf("Tipo incorrecto ('%s') en columna '%s' - se esperaba número", c.value, c.column)))
		}
	}
	return results
}

// IsNumeric reports whether v parses as a number, accepting a comma as the
// decimal separator.
func IsNumeric(v string) bool {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	if v == "" || isHexLiteral(v) {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

// isHexLiteral reports a 0x prefix after an optional sign. ParseFloat
// accepts hexadecimal floats, which are not decimal numbers in a CSV.
func isHexLiteral(v string) bool {
	v = strings.TrimLeft(v, "+-")
	return len(v) >= 2 && v[0] == '0' && (v[1] == 'x' || v[1] == 'X')
}

// decode returns content as UTF-8 text, reading it as Latin-1 when it is not
// valid UTF-8. A leading byte order mark is dropped.
func decode(content []byte) string {
	if utf8.Valid(content) {
		return strings.TrimPrefix(string(content), "\ufeff")
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return strings.ToValidUTF8(string(content), "\uFFFD")
	}
	return string(decoded)
}

func buildRow(header, record []string) Row {
	var row Row
	for i, col := range header {
		if i < len(record) {
			row.Set(col, record[i])
		} else {
			row.SetAbsent(col)
		}
	}
	return row
}

// readRecord reads the next record and rejects any field longer than
// MaxFieldSize, reporting it as a csv.ParseError at the field's position.
func readRecord(reader *csv.Reader) ([]string, error) {
	record, err := reader.Read()
	if err != nil {
		return record, err
	}
	for i, field := range record {
		if len(field) > MaxFieldSize {
			line, column := reader.FieldPos(i)
			return nil, &csv.ParseError{StartLine: line, Line: line, Column: column, Err: errFieldTooLarge}
		}
	}
	return record, nil
}

func readFailure(err error) domain.ValidationResult {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fileResult(domain.ValidationParseError, fmt.Sprintf("Error al parsear CSV: %v", err))
	}
	return fileResult(domain.ValidationUnknownError, fmt.Sprintf("Error desconocido: %v", err))
}

func fileResult(t domain.ValidationType, msg string) domain.ValidationResult {
	return domain.ValidationResult{ValidationType: t, Message: msg, Severity: t.Severity()}
}

func rowResult(t domain.ValidationType, rowNumber int, column *string, msg string) domain.ValidationResult {
	return domain.ValidationResult{
		ValidationType: t,
		RowNumber:      &rowNumber,
		ColumnName:     column,
		Message:        msg,
		Severity:       t.Severity(),
	}
}
