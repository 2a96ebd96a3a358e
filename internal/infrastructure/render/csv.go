package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV writes the document as section,field... rows. Amounts are plain decimals.
func CSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	write := func(record []string) error {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		return nil
	}

	for _, section := range doc.Sections {
		if err := write(append([]string{"section"}, section.Headers...)); err != nil {
			return nil, err
		}
		for _, row := range section.Rows {
			record := make([]string, 0, len(row)+1)
			record = append(record, section.Title)
			for _, cell := range row {
				record = append(record, cell.Raw())
			}
			if err := write(record); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
