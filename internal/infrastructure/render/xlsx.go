package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// XLSX writes the document to a single worksheet, one block per section
func XLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	heading, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	pctFmt := `0.00"%"`
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	integer, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	row := 1
	set := func(col int, value any, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(sheetName, cell, cell, style)
		}
		return nil
	}

	if err := set(1, doc.Title, heading); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	row += 2

	for _, section := range doc.Sections {
		if err := set(1, section.Title, bold); err != nil {
			return nil, fmt.Errorf("write section %s: %w", section.Title, err)
		}
		row++
		for i, h := range section.Headers {
			if err := set(i+1, h, bold); err != nil {
				return nil, fmt.Errorf("write header %s: %w", h, err)
			}
		}
		row++
		for _, cells := range section.Rows {
			for i, c := range cells {
				var err error
				switch c.Kind {
				case KindAmount:
					err = set(i+1, c.Number.InexactFloat64(), money)
				case KindPercent:
					err = set(i+1, c.Number.InexactFloat64(), pct)
				case KindCount:
					err = set(i+1, c.Number.IntPart(), integer)
				default:
					err = set(i+1, c.Text, 0)
				}
				if err != nil {
					return nil, fmt.Errorf("write section %s: %w", section.Title, err)
				}
			}
			row++
		}
		row++
	}

	if err := f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "C", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
