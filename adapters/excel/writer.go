package excel

import (
	"io"

	"habitboard/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of an exported workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// WriteWorkbook writes the sheets, in order, as an XLSX document.
// Header rows are bold and the first sheet replaces the default Sheet1.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.InvalidInput("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return errors.Wrapf(err, "failed to rename sheet to %s", sheet.Name)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", sheet.Name)
		}

		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return errors.Wrapf(err, "failed to write header of %s", sheet.Name)
	}
	if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
		return errors.Wrapf(err, "failed to style header of %s", sheet.Name)
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "invalid cell coordinates")
		}
		row := row
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d of %s", i+2, sheet.Name)
		}
	}
	return nil
}
