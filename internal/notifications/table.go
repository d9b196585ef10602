package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// TableNoData is the fixed fragment embedded when the report parsed cleanly
// but contained no displayable rows or columns.
const TableNoData = `<i>Report generated, but contained no displayable data.</i><br>`

// TableError is the fixed marker embedded when the report payload could not
// be converted to a table. The email must still be sendable with a degraded
// body, so conversion failures never propagate.
const TableError = "Error generating table from data."

// spuriousColumn is the literal key of the index column that upstream report
// generation sometimes injects. It is dropped only when present in every
// record and every value stringifies to exactly "0"; any other value means
// the column carries real data and is kept. Matching is on the literal
// string, not numeric zero.
const spuriousColumn = "0"

// record is one row of the report with JSON object key order preserved.
// encoding/json's map decoding discards key order, so records are decoded
// token-by-token instead; column order in the rendered table follows
// first-seen key order across records, matching the upstream report layout.
type record struct {
	keys   []string
	values map[string]any
}

// BuildTable converts a raw JSON report payload into an HTML table fragment.
//
// The payload is either an array of objects (row-oriented records) or a
// single object (one row). The returned fragment has no index column, cell
// borders via a border attribute plus an inline collapse style, and empty
// strings for null or missing cells.
//
// Returns ok=false only for an absent payload (nil or JSON null): with no
// report there is no table to embed. Every other outcome is ok=true — a
// rendered table, the TableNoData placeholder, or the TableError marker.
func BuildTable(report json.RawMessage) (string, bool) {
	if len(report) == 0 {
		return "", false
	}

	records, absent, err := decodeRecords(report)
	if err != nil {
		return TableError, true
	}
	if absent {
		return "", false
	}

	columns := collectColumns(records)
	columns = dropSpuriousColumn(columns, records)

	if len(records) == 0 || len(columns) == 0 {
		return TableNoData, true
	}

	return renderTable(columns, records), true
}

// decodeRecords parses the payload into ordered records. absent=true means
// the payload was JSON null. An error means the payload is not row-oriented
// tabular data (wrong top-level type, or an array element that is not an
// object).
func decodeRecords(data []byte) (records []record, absent bool, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false, err
	}

	switch t := tok.(type) {
	case nil:
		return nil, true, nil
	case json.Delim:
		switch t {
		case '{':
			rec, err := decodeObjectBody(dec)
			if err != nil {
				return nil, false, err
			}
			return []record{rec}, false, nil
		case '[':
			records = []record{}
			for dec.More() {
				open, err := dec.Token()
				if err != nil {
					return nil, false, err
				}
				if d, ok := open.(json.Delim); !ok || d != '{' {
					return nil, false, fmt.Errorf("array element is not an object")
				}
				rec, err := decodeObjectBody(dec)
				if err != nil {
					return nil, false, err
				}
				records = append(records, rec)
			}
			// Consume the closing ']'.
			if _, err := dec.Token(); err != nil {
				return nil, false, err
			}
			return records, false, nil
		default:
			return nil, false, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return nil, false, fmt.Errorf("payload is not an object or array")
	}
}

// decodeObjectBody reads key/value pairs up to and including the closing
// '}', assuming the opening '{' has already been consumed.
func decodeObjectBody(dec *json.Decoder) (record, error) {
	rec := record{values: map[string]any{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return rec, fmt.Errorf("object key is not a string")
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return rec, err
		}

		if _, seen := rec.values[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = value
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return rec, err
	}
	return rec, nil
}

// collectColumns returns the union of record keys in first-seen order.
func collectColumns(records []record) []string {
	var columns []string
	seen := map[string]bool{}
	for _, rec := range records {
		for _, k := range rec.keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}

// dropSpuriousColumn removes the "0" column when every record carries it
// with a value that stringifies to "0".
func dropSpuriousColumn(columns []string, records []record) []string {
	idx := -1
	for i, c := range columns {
		if c == spuriousColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return columns
	}

	for _, rec := range records {
		v, present := rec.values[spuriousColumn]
		if !present || cellString(v) != spuriousColumn {
			return columns
		}
	}

	return append(columns[:idx:idx], columns[idx+1:]...)
}

// cellString converts a decoded JSON value to its cell text. Null and
// missing values render as the empty string; nested structures render as
// compact JSON.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// renderTable produces the HTML fragment for the given columns and records.
// Cell contents are HTML-escaped here; the renderer injects the fragment as
// pre-escaped markup.
func renderTable(columns []string, records []record) string {
	var b strings.Builder

	b.WriteString(`<table border="1" style="border-collapse: collapse; border: 1px solid black;">` + "\n")
	b.WriteString("  <thead>\n    <tr>\n")
	for _, c := range columns {
		b.WriteString("      <th>" + html.EscapeString(c) + "</th>\n")
	}
	b.WriteString("    </tr>\n  </thead>\n  <tbody>\n")

	for _, rec := range records {
		b.WriteString("    <tr>\n")
		for _, c := range columns {
			b.WriteString("      <td>" + html.EscapeString(cellString(rec.values[c])) + "</td>\n")
		}
		b.WriteString("    </tr>\n")
	}

	b.WriteString("  </tbody>\n</table>")
	return b.String()
}
