// Package importer resolves the ordered list of profile URLs from an
// uploaded spreadsheet.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadProfileURLs opens the uploaded file and returns the profile URLs from
// its first column, in file order. A header row is skipped when its first
// cell is not a URL. Supported formats: .xlsx and .csv.
func ReadProfileURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .xlsx or .csv)", filepath.Ext(path))
	}
}

func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}

	var cells []string
	for _, row := range rows {
		if len(row) == 0 {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, row[0])
	}
	return collectURLs(cells)
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // Rows may have trailing columns; only the first matters.

	var cells []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		cells = append(cells, record[0])
	}
	return collectURLs(cells)
}

// collectURLs filters first-column cells down to valid absolute URLs,
// preserving order. The first row is allowed to be a header and is skipped
// silently when it does not parse as a URL.
func collectURLs(cells []string) ([]string, error) {
	var urls []string
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if !isProfileURL(cell) {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("row %d: %q is not a valid URL", i+1, cell)
		}
		urls = append(urls, cell)
	}
	return urls, nil
}

func isProfileURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
