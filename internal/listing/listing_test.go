package listing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `MLS|Address|Sold Price|Beds
X100|123 Main St, Carp, K0A 1L0|450000|3
X101|#4 88 Bank St, Ottawa, K1P 5N2|$612,500.50|2
`

func TestRead_Sample(t *testing.T) {
	table, err := Read(strings.NewReader(sample), DefaultDelimiter)
	require.NoError(t, err)

	assert.Equal(t, []string{"MLS", "Address", "Sold Price", "Beds"}, table.Header)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "123 Main St, Carp, K0A 1L0", first.Address)
	assert.InDelta(t, 450000, first.SoldPrice, 0.001)
	assert.Equal(t, "X100", first.Fields["MLS"])
	assert.Equal(t, "3", first.Fields["Beds"])

	second := table.Rows[1]
	assert.Equal(t, 3, second.Line)
	assert.InDelta(t, 612500.50, second.SoldPrice, 0.001)
	assert.Equal(t, "$612,500.50", second.Fields[ColSoldPrice])
}

func TestRead_HeaderWhitespaceAndBOM(t *testing.T) {
	input := "\ufeff Address | Sold Price \n1 Elm St|100\n"
	table, err := Read(strings.NewReader(input), DefaultDelimiter)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "1 Elm St", table.Rows[0].Address)
}

func TestRead_MissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("Address|Price\n1 Elm St|100\n"), DefaultDelimiter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "Sold Price"`)

	_, err = Read(strings.NewReader("Street|Sold Price\n1 Elm St|100\n"), DefaultDelimiter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "Address"`)
}

func TestRead_BadPrice(t *testing.T) {
	input := "Address|Sold Price\n1 Elm St|100\n2 Elm St|call agent\n"
	_, err := Read(strings.NewReader(input), DefaultDelimiter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestRead_ShortRecordPriceMissing(t *testing.T) {
	input := "Address|Sold Price\n1 Elm St\n"
	_, err := Read(strings.NewReader(input), DefaultDelimiter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty Sold Price")
}

func TestRead_Empty(t *testing.T) {
	table, err := Read(strings.NewReader(""), DefaultDelimiter)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	table, err = Read(strings.NewReader("Address|Sold Price\n"), DefaultDelimiter)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Equal(t, []string{"Address", "Sold Price"}, table.Header)
}

func TestRead_CustomDelimiter(t *testing.T) {
	table, err := Read(strings.NewReader("Address;Sold Price\n1 Elm St;250000\n"), ';')
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 250000, table.Rows[0].SoldPrice, 0.001)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	table, err := Load(path, DefaultDelimiter)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, []float64{450000, 612500.50}, table.Prices())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), DefaultDelimiter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing: open file")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"450000", 450000, false},
		{" 450000 ", 450000, false},
		{"$1,250,000", 1250000, false},
		{"399999.99", 399999.99, false},
		{"", 0, true},
		{"$", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "in=%q", tt.in)
			continue
		}
		require.NoError(t, err, "in=%q", tt.in)
		assert.InDelta(t, tt.want, got, 0.001, "in=%q", tt.in)
	}
}
