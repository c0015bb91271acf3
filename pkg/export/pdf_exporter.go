package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin    = 10.0
	pdfCellPad   = 4.0
	pdfRowHeight = 7.0
)

// PDFExporter lays the dataset out as a landscape A4 table sized to its content.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the title block, then the table. The header row repeats on every page.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin - 2)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	var widths []float64
	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(220, 220, 220)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], pdfRowHeight+1, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	widths = columnWidths(pdf, data)
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, data.Title, "", 1, "C", false, 0, "")
	}
	if data.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, data.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	header()

	pdf.SetFillColor(245, 245, 245)
	for r, row := range data.Rows {
		for i, value := range row {
			pdf.CellFormat(widths[i], pdfRowHeight, value, "1", 0, "", r%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths sizes each column to its widest cell and scales the table to the printable width.
func columnWidths(pdf *gofpdf.Fpdf, data Dataset) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	available := pageWidth - 2*pdfMargin

	widths := make([]float64, len(data.Headers))
	total := 0.0
	for i, h := range data.Headers {
		pdf.SetFont("Arial", "B", 10)
		widths[i] = pdf.GetStringWidth(h) + pdfCellPad
		pdf.SetFont("Arial", "", 9)
		for _, row := range data.Rows {
			if w := pdf.GetStringWidth(row[i]) + pdfCellPad; w > widths[i] {
				widths[i] = w
			}
		}
		total += widths[i]
	}
	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}
