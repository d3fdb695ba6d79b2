package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ukydev/fleet-dashboard/internal/format"
)

const (
	pageMargin   = 10.0
	footerHeight = 8.0
	rowHeight    = 6.5
	lineHeight   = 5.0
	fontSize     = 8.0

	// Detail blocks start on a new page once the cursor passes this line (mm).
	detailBreakY = 175.0

	minColumnWidth = 14.0
	maxColumnWidth = 70.0
)

// PDFOptions controls PDF rendering.
type PDFOptions struct {
	GeneratedAt    time.Time
	IncludeDetails bool
}

// WritePDF renders the table on landscape A4 pages, repeating the header row
// on every page, and returns the page count.
func WritePDF(w io.Writer, t Table, opts PDFOptions) (int, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(t.Title, true)
	pdf.SetCreator("fleet-dashboard", true)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerHeight)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 9, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr("Generated at "+format.DateTime(opts.GeneratedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := columnWidths(pdf, t, tr)
	header := func() {
		pdf.SetFont("Helvetica", "B", fontSize)
		pdf.SetFillColor(33, 66, 99)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Headers {
			pdf.CellFormat(widths[i], rowHeight, fit(pdf, tr(h), widths[i]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowHeight)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", fontSize)
	}

	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - pageMargin - footerHeight
	header()
	for i, row := range t.Rows {
		if pdf.GetY()+rowHeight > bottom {
			pdf.AddPage()
			header()
		}
		if i%2 == 1 {
			pdf.SetFillColor(240, 243, 247)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for c, cell := range row {
			if c >= len(widths) {
				break
			}
			pdf.CellFormat(widths[c], rowHeight, fit(pdf, tr(cell), widths[c]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	if opts.IncludeDetails && len(t.Details) > 0 {
		pdf.Ln(4)
		for _, d := range t.Details {
			if pdf.GetY() > detailBreakY {
				pdf.AddPage()
			}
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, lineHeight+1, tr(d.Heading), "B", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			for _, line := range d.Lines {
				if pdf.GetY()+lineHeight > bottom {
					pdf.AddPage()
				}
				pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
			}
			pdf.Ln(3)
		}
	}

	pages := pdf.PageNo()
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return pages, nil
}

// columnWidths sizes columns by content, then scales them to the page width.
func columnWidths(pdf *fpdf.Fpdf, t Table, tr func(string) string) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	available := pageWidth - 2*pageMargin
	widths := make([]float64, len(t.Headers))
	if len(widths) == 0 {
		return widths
	}

	pdf.SetFont("Helvetica", "B", fontSize)
	for i, h := range t.Headers {
		widths[i] = pdf.GetStringWidth(tr(h)) + 4
	}
	pdf.SetFont("Helvetica", "", fontSize)
	for r, row := range t.Rows {
		if r == 50 {
			break
		}
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], pdf.GetStringWidth(tr(cell))+4)
			}
		}
	}

	total := 0.0
	for i := range widths {
		widths[i] = min(max(widths[i], minColumnWidth), maxColumnWidth)
		total += widths[i]
	}
	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// fit truncates s so it fits in a cell of width w.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > limit {
		s = s[:len(s)-1]
	}
	return s + ".."
}
