package vendors

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/warehub-io/warehub/internal/models"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("Failed to write row %d: %v", i+1, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportExcel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	book := buildWorkbook(t, [][]interface{}{
		{"Name", "Main Category", "Subcategory", "Phone", "City", "Status"},
		{"Gulf Lubricants", "operation_services", "Lubricants", "+971-4-555-0101", "Dubai", "active"},
		{"Atlas Hydraulics", "operation_services", "Hydraulics", "", "Sharjah", ""},
		{"", "operation_services", "", "", "", ""},
		{"Bad Status Co", "operation_services", "", "", "", "defunct"},
	})

	result, err := svc.ImportExcel(ctx, book)
	if err != nil {
		t.Fatalf("ImportExcel failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 row errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "missing name") {
		t.Errorf("Expected missing-name error first, got %q", result.Errors[0])
	}
	if !strings.Contains(result.Errors[1], "unknown status") {
		t.Errorf("Expected unknown-status error second, got %q", result.Errors[1])
	}

	// Blank status defaults to active
	list, err := svc.List(ctx, string(models.VendorStatusActive), "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected both imported vendors active, got %d", len(list))
	}
	if list[0].Name != "Atlas Hydraulics" || list[1].Name != "Gulf Lubricants" {
		t.Errorf("Unexpected ordering: %s, %s", list[0].Name, list[1].Name)
	}
}

func TestImportExcelRejectsMissingNameColumn(t *testing.T) {
	svc, _ := newTestService(t)

	book := buildWorkbook(t, [][]interface{}{
		{"Phone", "City"},
		{"+971-4-555-0101", "Dubai"},
	})
	if _, err := svc.ImportExcel(context.Background(), book); err == nil {
		t.Fatal("Expected an error for a workbook without a Name column")
	}
}
