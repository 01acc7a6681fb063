package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{name: "comma", line: "codigo,quantidade,preco", want: ','},
		{name: "semicolon", line: "codigo;quantidade;preco", want: ';'},
		{name: "tab", line: "codigo\tquantidade\tpreco", want: '\t'},
		{name: "pipe", line: "codigo|quantidade|preco", want: '|'},
		{name: "majority wins", line: "a;b;c,d", want: ';'},
		{name: "comma wins ties", line: "a,b;c", want: ','},
		{name: "no delimiter defaults to comma", line: "codigo", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.line))
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Código de Barras", want: "codigo_de_barras"},
		{input: "  QUANTIDADE  ", want: "quantidade"},
		{input: "Preço (R$)", want: "preco_r"},
		{input: "qtd.", want: "qtd"},
		{input: "Descrição", want: "descricao"},
		{input: "__estoque__", want: "estoque"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.input))
		})
	}
}

func TestParser_Parse(t *testing.T) {
	t.Run("recognizes headers by alias", func(t *testing.T) {
		payload := "Código de Barras;Quantidade;Descrição\n7891000100103;10;Leite\n7896004000015;5;Café\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		assert.Equal(t, ';', table.Delimiter)
		assert.False(t, table.Columns.Positional)
		assert.Equal(t, 0, table.Columns.Barcode)
		assert.Equal(t, 1, table.Columns.Quantity)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "7891000100103", table.Rows[0].Get(table.Columns.Barcode))
		assert.Equal(t, "10", table.Rows[0].Get(table.Columns.Quantity))
		assert.Equal(t, "Leite", table.Rows[0].Data["descricao"])
	})

	t.Run("matches alias by substring", func(t *testing.T) {
		payload := "meu_codigo_interno,qtde_atual\n7891000100103,3\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		assert.False(t, table.Columns.Positional)
		assert.Equal(t, 0, table.Columns.Barcode)
		assert.Equal(t, 1, table.Columns.Quantity)
	})

	t.Run("falls back to positional mapping", func(t *testing.T) {
		payload := "7891000100103,10\n7896004000015,5\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		assert.True(t, table.Columns.Positional)
		// No header line is consumed in positional mode.
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "7891000100103", table.Rows[0].Get(0))
		assert.Equal(t, 1, table.Rows[0].LineNumber)
	})

	t.Run("normalizes CRLF, CR and BOM", func(t *testing.T) {
		payload := "\uFEFFcodigo,qtd\r\n7891000100103,10\r7896004000015,5\r\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "7896004000015", table.Rows[1].Get(0))
	})

	t.Run("drops blank lines but keeps original line numbers", func(t *testing.T) {
		payload := "codigo,qtd\n\n7891000100103,10\n   \n7896004000015,5\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 3, table.Rows[0].LineNumber)
		assert.Equal(t, 5, table.Rows[1].LineNumber)
	})

	t.Run("honors quoted fields with escaped quotes", func(t *testing.T) {
		payload := "codigo,qtd,descricao\n\"7891000100103\",10,\"Café \"\"Extra\"\", moído\"\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, `Café "Extra", moído`, table.Rows[0].Data["descricao"])
	})

	t.Run("right-pads short rows", func(t *testing.T) {
		payload := "codigo,qtd,descricao\n7891000100103\n"

		table, err := NewParser().Parse([]byte(payload))

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Len(t, table.Rows[0].Fields, 3)
		assert.Equal(t, "", table.Rows[0].Get(1))
	})

	t.Run("declared delimiter skips detection", func(t *testing.T) {
		payload := "codigo|qtd\n7891000100103|10\n"

		table, err := NewParser(WithDelimiter('|')).Parse([]byte(payload))

		require.NoError(t, err)
		assert.Equal(t, '|', table.Delimiter)
		require.Len(t, table.Rows, 1)
	})

	t.Run("empty payload fails", func(t *testing.T) {
		_, err := NewParser().Parse(nil)
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("header-only payload fails", func(t *testing.T) {
		_, err := NewParser().Parse([]byte("codigo,qtd\n"))
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("rejects non-UTF-8 payloads", func(t *testing.T) {
		_, err := NewParser().Parse([]byte{0xff, 0xfe, 0x41})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}
