package csvvalidator

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

type cell struct {
	column  string
	value   string
	present bool
}

// Row is a parsed CSV record keyed by header column. Columns keep the order
// in which they were first set. The zero value is an empty row.
type Row struct {
	cells []cell
	index map[string]int
}

// Set stores value under column. A repeated column keeps its original
// position and takes the latest value.
func (r *Row) Set(column, value string) {
	r.put(cell{column: column, value: value, present: true})
}

// SetAbsent records column with no value, as for a record shorter than the header.
func (r *Row) SetAbsent(column string) {
	r.put(cell{column: column})
}

func (r *Row) put(c cell) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[c.column]; ok {
		r.cells[i] = c
		return
	}
	r.index[c.column] = len(r.cells)
	r.cells = append(r.cells, c)
}

// Get returns the value for column and whether the column holds a value.
func (r Row) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok || !r.cells[i].present {
		return "", false
	}
	return r.cells[i].value, true
}

// Columns returns the column names in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r.cells))
	for i := range r.cells {
		cols[i] = r.cells[i].column
	}
	return cols
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cells) }

// MarshalJSON encodes the row as a JSON object with keys in column order.
// Absent values encode as null.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if !c.present {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(c.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Fingerprint returns a content hash of the row that does not depend on
// column order.
func Fingerprint(r Row) string {
	parts := make([]string, len(r.cells))
	for i, c := range r.cells {
		if c.present {
			parts[i] = c.column + ":" + c.value
		} else {
			parts[i] = c.column
		}
	}
	sort.Strings(parts)
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
