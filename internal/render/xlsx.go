package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"spotchart/internal/model"
)

const sheetName = "Preise"

// XLSX writes data as a workbook: one row per slot, one column per dataset.
// NaN cells are left empty.
func XLSX(w io.Writer, data model.ChartData) error {
	if data.Empty() {
		return ErrNothingToDraw
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := []any{"Zeit"}
	for _, ds := range data.Datasets {
		header = append(header, ds.Label)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, label := range data.Labels {
		row := []any{label}
		for _, ds := range data.Datasets {
			if i < len(ds.Data) && model.IsFinite(ds.Data[i]) {
				row = append(row, ds.Data[i])
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if data.Title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: data.Title}); err != nil {
			return fmt.Errorf("setting properties: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
