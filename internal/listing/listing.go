// Package listing loads delimited real-estate listing files.
package listing

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Column names every listing file must carry.
const (
	ColAddress   = "Address"
	ColSoldPrice = "Sold Price"
)

// DefaultDelimiter separates fields in listing exports.
const DefaultDelimiter = '|'

// Row is a single listing as read from the input file.
type Row struct {
	Line      int               `json:"line"`
	Address   string            `json:"address"`
	SoldPrice float64           `json:"sold_price"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Table is the loaded listing file.
type Table struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

// Prices returns the sold price of every row, in row order.
func (t *Table) Prices() []float64 {
	prices := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		prices[i] = r.SoldPrice
	}
	return prices
}

// Load opens path and reads it with the given field delimiter.
func Load(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "listing: open file")
	}
	defer f.Close() //nolint:errcheck

	return Read(f, delim)
}

// Read parses a delimited listing stream. The first record is the header.
func Read(r io.Reader, delim rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "listing: read header")
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		colIdx[header[i]] = i
	}

	// Verify required columns exist.
	for _, col := range []string{ColAddress, ColSoldPrice} {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("listing: missing required column %q", col)
		}
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "listing: read record")
		}
		line, _ := reader.FieldPos(0)

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}

		rawPrice := fields[ColSoldPrice]
		price, err := ParsePrice(rawPrice)
		if err != nil {
			return nil, eris.Wrapf(err, "listing: line %d", line)
		}

		table.Rows = append(table.Rows, Row{
			Line:      line,
			Address:   fields[ColAddress],
			SoldPrice: price,
			Fields:    fields,
		})
	}

	return table, nil
}

// ParsePrice converts a sold price cell to a number. Currency symbols,
// thousands separators and surrounding whitespace are ignored.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, eris.Errorf("listing: empty %s", ColSoldPrice)
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "listing: invalid %s %q", ColSoldPrice, s)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, eris.Errorf("listing: invalid %s %q", ColSoldPrice, s)
	}
	return price, nil
}
