// Package export produces the downloadable XLSX workbook for a finished job.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/prospectr/prospectr-go/internal/models"
)

const sheet = "Profiles"

var headers = []string{
	"Profile URL",
	"Status",
	"Error Kind",
	"Error Message",
	"First Name",
	"Last Name",
	"Headline",
	"Location",
	"Summary",
	"Positions",
	"Education",
	"Skills",
}

// GenerateWorkbook renders one row per item, in file order, and returns the
// workbook as bytes.
func GenerateWorkbook(items []*models.ProfileItem) ([]byte, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, item := range items {
		row := i + 2
		write := func(col int, v interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, item.SourceURL)
		write(2, item.Status)
		write(3, item.ErrorKind)
		write(4, item.ErrorMessage)

		if p := item.Profile; p != nil {
			write(5, p.FirstName)
			write(6, p.LastName)
			write(7, p.Headline)
			write(8, p.Location)
			write(9, p.Summary)
			write(10, formatPositions(p.Positions))
			write(11, formatEducation(p.Education))
			write(12, strings.Join(p.Skills, ", "))
		}
	}

	// Widen the columns that usually carry long text.
	_ = f.SetColWidth(sheet, "A", "A", 50)
	_ = f.SetColWidth(sheet, "B", "D", 16)
	_ = f.SetColWidth(sheet, "E", "H", 20)
	_ = f.SetColWidth(sheet, "I", "L", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJobExport generates the workbook for a job's items and saves it under
// the exports directory with a random file name, returning the full path.
func WriteJobExport(exportsDir string, items []*models.ProfileItem) (string, error) {
	data, err := GenerateWorkbook(items)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(exportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create exports directory: %w", err)
	}
	path := filepath.Join(exportsDir, fmt.Sprintf("%s.xlsx", uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}
	return path, nil
}

func formatPositions(positions []models.Position) string {
	var parts []string
	for _, p := range positions {
		s := p.Title
		if p.Company != "" {
			s += " @ " + p.Company
		}
		if p.StartDate != "" || p.EndDate != "" {
			end := p.EndDate
			if end == "" {
				end = "present"
			}
			s += fmt.Sprintf(" (%s - %s)", p.StartDate, end)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

func formatEducation(education []models.Education) string {
	var parts []string
	for _, e := range education {
		s := e.School
		if e.Degree != "" {
			s += ", " + e.Degree
		}
		if e.FieldOf != "" {
			s += " in " + e.FieldOf
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}
