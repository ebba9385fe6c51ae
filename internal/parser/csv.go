package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/dataset"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string, opt Options) ([]dataset.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, delimiterFor(path, opt.Delimiter))
}

// ReadCSV reads delimited text with a header row. Short rows are padded with
// empty cells; extra cells beyond the header are ignored.
func ReadCSV(r io.Reader, delim rune) ([]dataset.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []dataset.RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		if blankRow(rec) {
			continue
		}
		rows = append(rows, rowFromCells(header, rec))
	}
	return rows, nil
}

func delimiterFor(path string, override rune) rune {
	if override != 0 {
		return override
	}
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func rowFromCells(header, cells []string) dataset.RawRow {
	row := make(dataset.RawRow, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		row[h] = v
	}
	return row
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
