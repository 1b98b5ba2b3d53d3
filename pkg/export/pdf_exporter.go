package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 277.0 // A4 landscape minus margins
	pdfFontFamily = "body"
)

// PDFExporter renders datasets into a landscape table.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. fontPath points at a UTF-8 TrueType
// font; without one the core Helvetica font is used and non-Latin text will not
// render.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render lays data out as a bordered table under an optional title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	family := "Helvetica"
	if e.fontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", e.fontPath)
		pdf.AddUTF8Font(pdfFontFamily, "B", e.fontPath)
		family = pdfFontFamily
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "B", 13)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	widths := columnWidths(data)
	header := func() {
		pdf.SetFont(family, "B", 9)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, fit(pdf, h, widths[i]), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(family, "", 8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, fit(pdf, cell, widths[i]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths spreads the printable width by data.Weights, or evenly when
// the weights do not match the headers.
func columnWidths(data Dataset) []float64 {
	widths := make([]float64, len(data.Headers))
	total := 0.0
	if len(data.Weights) == len(data.Headers) {
		for _, w := range data.Weights {
			if w > 0 {
				total += w
			}
		}
	}
	for i := range widths {
		if total == 0 {
			widths[i] = pdfPageWidth / float64(len(widths))
			continue
		}
		if w := data.Weights[i]; w > 0 {
			widths[i] = pdfPageWidth * w / total
		}
	}
	return widths
}

// fit shortens value with an ellipsis until it fits width with cell padding.
func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(candidate) <= limit {
			return candidate
		}
	}
	return ""
}
