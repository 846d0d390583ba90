package export_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/prospectr/prospectr-go/internal/export"
	"github.com/prospectr/prospectr-go/internal/models"
)

func sampleItems() []*models.ProfileItem {
	return []*models.ProfileItem{
		{
			SourceURL: "https://example.com/in/alice",
			Status:    models.ItemStatusSuccess,
			Profile: &models.ProfileData{
				FirstName: "Alice",
				LastName:  "Smith",
				Headline:  "Engineer",
				Location:  "Berlin",
				Positions: []models.Position{
					{Title: "Engineer", Company: "Acme", StartDate: "2020-01"},
				},
				Education: []models.Education{
					{School: "TU Berlin", Degree: "MSc", FieldOf: "CS"},
				},
				Skills: []string{"go", "sql"},
			},
		},
		{
			SourceURL:    "https://example.com/in/bob",
			Status:       models.ItemStatusFailed,
			ErrorKind:    "not_found",
			ErrorMessage: "profile not found",
		},
	}
}

func TestGenerateWorkbook(t *testing.T) {
	data, err := export.GenerateWorkbook(sampleItems())
	if err != nil {
		t.Fatalf("GenerateWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Generated workbook is not readable: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Profiles")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Profile URL" || rows[0][1] != "Status" {
		t.Errorf("Unexpected header row: %v", rows[0])
	}

	alice := rows[1]
	if alice[0] != "https://example.com/in/alice" || alice[1] != "success" {
		t.Errorf("Unexpected first row: %v", alice)
	}
	if alice[4] != "Alice" || alice[5] != "Smith" {
		t.Errorf("Expected name columns, got %v", alice)
	}
	if alice[9] != "Engineer @ Acme (2020-01 - present)" {
		t.Errorf("Unexpected positions cell: %q", alice[9])
	}
	if alice[10] != "TU Berlin, MSc in CS" {
		t.Errorf("Unexpected education cell: %q", alice[10])
	}
	if alice[11] != "go, sql" {
		t.Errorf("Unexpected skills cell: %q", alice[11])
	}

	bob := rows[2]
	if bob[1] != "failed" || bob[2] != "not_found" || bob[3] != "profile not found" {
		t.Errorf("Unexpected failed row: %v", bob)
	}
}

func TestWriteJobExport(t *testing.T) {
	dir := t.TempDir()

	path, err := export.WriteJobExport(dir, sampleItems())
	if err != nil {
		t.Fatalf("WriteJobExport failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Export written outside target dir: %s", path)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Errorf("Expected an .xlsx file, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Export file missing: %v", err)
	}
}

func TestWriteJobExportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")

	path, err := export.WriteJobExport(dir, nil)
	if err != nil {
		t.Fatalf("WriteJobExport failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Export file missing: %v", err)
	}
}
