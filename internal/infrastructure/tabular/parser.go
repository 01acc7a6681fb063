// Package tabular parses delimited-text stock snapshots of unknown shape:
// unknown delimiter, unknown header names, possibly no header at all.
package tabular

import (
	"encoding/csv"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// candidate field delimiters, in tie-breaking order
var delimiters = []rune{',', ';', '\t', '|'}

// Row is one parsed data row
type Row struct {
	// LineNumber is the 1-based line of the original payload
	LineNumber int
	// Fields holds the split cells, right-padded to the header width
	Fields []string
	// Data maps normalized header names to cell values (empty in
	// positional mode)
	Data map[string]string
}

// Get returns the cell at the given column index, or "" when out of range
func (r *Row) Get(col int) string {
	if col < 0 || col >= len(r.Fields) {
		return ""
	}
	return r.Fields[col]
}

// ColumnMap locates the identifier and quantity columns
type ColumnMap struct {
	Barcode  int
	Quantity int
	// Positional is true when no header was recognized and the mapping
	// fell back to column 0 = identifier, column 1 = quantity. This
	// fallback is risky: the payload shape is being guessed.
	Positional bool
}

// Table is the parse result of one payload
type Table struct {
	Delimiter rune
	Headers   []string
	Columns   ColumnMap
	Rows      []Row
}

// Parser parses delimited payloads
type Parser struct {
	delimiter       rune
	barcodeAliases  []string
	quantityAliases []string
}

// Option is a functional option for Parser configuration
type Option func(*Parser)

// WithDelimiter declares the field delimiter, skipping detection
func WithDelimiter(d rune) Option {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// WithBarcodeAliases replaces the identifier column alias set
func WithBarcodeAliases(aliases ...string) Option {
	return func(p *Parser) {
		p.barcodeAliases = aliases
	}
}

// WithQuantityAliases replaces the quantity column alias set
func WithQuantityAliases(aliases ...string) Option {
	return func(p *Parser) {
		p.quantityAliases = aliases
	}
}

// NewParser creates a parser with the default alias sets
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		barcodeAliases: []string{
			"codigo_de_barras", "codigo_barras", "cod_barras", "barras",
			"barcode", "ean", "gtin", "codigo", "cod",
		},
		quantityAliases: []string{
			"quantidade", "qtde", "qtd", "estoque", "saldo",
			"quantity", "qty", "stock",
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse turns a raw payload into rows of named fields. The first line drives
// delimiter detection and header recognition; when neither the identifier
// nor the quantity column is recognized by name, the parser falls back to
// positional mapping and every line (the first included) is treated as data.
func (p *Parser) Parse(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, ErrNoRows
	}

	delimiter := p.delimiter
	if delimiter == 0 {
		delimiter = DetectDelimiter(lines[0].text)
	}

	headerCells, err := splitFields(lines[0].text, delimiter)
	if err != nil {
		return nil, fmt.Errorf("unreadable first line: %w", err)
	}

	headers := make([]string, len(headerCells))
	for i, cell := range headerCells {
		headers[i] = NormalizeHeader(cell)
	}

	columns, recognized := p.mapColumns(headers)

	table := &Table{
		Delimiter: delimiter,
		Columns:   columns,
	}

	dataLines := lines
	if recognized {
		table.Headers = headers
		dataLines = lines[1:]
	}

	width := len(headers)
	if !recognized && width < 2 {
		width = 2
	}

	for _, line := range dataLines {
		fields, err := splitFields(line.text, delimiter)
		if err != nil {
			// A structurally broken line is still one row; keep the raw
			// text in column 0 so it surfaces in the invalid report.
			fields = []string{line.text}
		}
		for len(fields) < width {
			fields = append(fields, "")
		}

		row := Row{LineNumber: line.number, Fields: fields}
		if recognized {
			row.Data = make(map[string]string, len(table.Headers))
			for i, h := range table.Headers {
				row.Data[h] = fields[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoRows
	}

	return table, nil
}

// DetectDelimiter picks the candidate delimiter with the most occurrences
// in the given line. Comma wins ties.
func DetectDelimiter(line string) rune {
	best := delimiters[0]
	bestCount := -1
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			best = d
			bestCount = count
		}
	}
	return best
}

// NormalizeHeader canonicalizes a header cell: trim, lowercase, strip
// diacritics, collapse runs of non-word characters to a single underscore,
// trim leading and trailing underscores.
func NormalizeHeader(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	s = stripDiacritics(s)

	var sb strings.Builder
	sb.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}

// mapColumns matches normalized headers against the alias sets: exact match
// first, then substring containment. Returns the positional fallback when
// neither column is recognized.
func (p *Parser) mapColumns(headers []string) (ColumnMap, bool) {
	barcodeCol := matchColumn(headers, p.barcodeAliases)
	quantityCol := matchColumn(headers, p.quantityAliases)

	if barcodeCol < 0 && quantityCol < 0 {
		return ColumnMap{Barcode: 0, Quantity: 1, Positional: true}, false
	}
	if barcodeCol < 0 {
		barcodeCol = 0
	}
	if quantityCol < 0 {
		quantityCol = 1
	}
	return ColumnMap{Barcode: barcodeCol, Quantity: quantityCol}, true
}

func matchColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if h == alias {
				return i
			}
		}
	}
	for _, alias := range aliases {
		for i, h := range headers {
			if h != "" && strings.Contains(h, alias) {
				return i
			}
		}
	}
	return -1
}

type numberedLine struct {
	number int
	text   string
}

// splitLines normalizes line endings (CRLF, bare CR, UTF-8 BOM) and drops
// blank lines while keeping the original 1-based line numbers.
func splitLines(data []byte) []numberedLine {
	text := string(data)
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []numberedLine
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, numberedLine{number: i + 1, text: line})
	}
	return lines
}

// splitFields splits one line honoring quoted fields; a doubled quote inside
// a quoted field is an escaped literal quote.
func splitFields(line string, delimiter rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields, nil
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
