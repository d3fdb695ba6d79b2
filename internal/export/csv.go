package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Write encodes the table in the requested format.
func Write(w io.Writer, t Table, f Format, opts PDFOptions) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatPDF:
		_, err := WritePDF(w, t, opts)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
