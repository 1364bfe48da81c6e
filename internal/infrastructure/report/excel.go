// Package report exports a run report as an xlsx inventory workbook.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

const sheetName = "Organized"

// WriteWorkbook writes one sheet with a header row and one row per
// operation of the run.
func WriteWorkbook(path string, run *domain.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []any{"Source", "Category", "Filename", "Outcome", "Error"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, op := range run.Operations {
		errMsg := ""
		if op.Err != nil {
			errMsg = op.Err.Error()
		}
		row := []any{
			op.SourcePath,
			op.Category.String(),
			op.FinalFilename,
			string(op.Outcome),
			errMsg,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
