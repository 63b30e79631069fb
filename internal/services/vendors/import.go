package vendors

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/warehub-io/warehub/internal/models"
	"github.com/xuri/excelize/v2"
)

// ImportResult reports what an Excel import did. The import keeps going
// past bad rows and reports them instead of aborting.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// importColumns lists the recognized header names
var importColumns = []string{
	"name", "main category", "subcategory", "product type",
	"product code", "contact name", "phone", "email",
	"location", "city", "state", "zone", "status",
}

// ImportExcel reads vendors from the first sheet of an .xlsx file.
// The first row must be a header; column order is free.
func (s *Service) ImportExcel(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}

	columns := make(map[string]int, len(importColumns))
	for _, key := range importColumns {
		columns[key] = -1
	}
	for idx, header := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		if _, ok := columns[key]; ok {
			columns[key] = idx
		}
	}
	if columns["name"] < 0 {
		return nil, fmt.Errorf("header row is missing the Name column")
	}

	cell := func(row []string, key string) string {
		idx := columns[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &ImportResult{}
	for i, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing name", i+2))
			continue
		}

		status := models.VendorStatus(strings.ToLower(cell(row, "status")))
		switch status {
		case models.VendorStatusActive, models.VendorStatusInactive,
			models.VendorStatusPending, models.VendorStatusSuspended:
		case "":
			status = models.VendorStatusActive
		default:
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown status %q", i+2, status))
			continue
		}

		vendor := models.Vendor{
			Name:         name,
			MainCategory: cell(row, "main category"),
			Subcategory:  cell(row, "subcategory"),
			ProductType:  cell(row, "product type"),
			ProductCode:  cell(row, "product code"),
			ContactName:  cell(row, "contact name"),
			Phone:        cell(row, "phone"),
			Email:        cell(row, "email"),
			Location:     cell(row, "location"),
			City:         cell(row, "city"),
			State:        cell(row, "state"),
			Zone:         cell(row, "zone"),
			Status:       status,
			IsActive:     status == models.VendorStatusActive,
		}
		if err := s.db.WithContext(ctx).Create(&vendor).Error; err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}
