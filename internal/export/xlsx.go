// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/trial-engine/internal/enrich"
)

const sheetName = "Trials"

func writeXLSX(records []enrich.Record, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("resolving header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col.header); err != nil {
			return fmt.Errorf("writing header %q: %w", col.header, err)
		}
	}

	for r, rec := range records {
		for c, col := range columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("resolving cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, col.value(rec)); err != nil {
				return fmt.Errorf("writing row %d: %w", r+1, err)
			}
		}
	}

	// Widen the identity and title columns; the rest stay default.
	if err := f.SetColWidth(sheetName, "A", "A", 14); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "C", 48); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
