package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/womenwealthwave/wealthwave/internal/calc"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// PDF Generator (fpdf core fonts, A4 portrait)
// ════════════════════════════════════════════════════════════════════

const (
	pdfMargin   = 15.0
	pdfRowH     = 6.5
	pdfLabelW   = 80.0
	pdfBarMaxW  = 90.0
	pdfBarLabel = 70.0
)

// GeneratePDF renders the plan as a PDF and writes it to w.
func GeneratePDF(w io.Writer, p Plan, slabs calc.SlabTable, cfg Config) error {
	res, err := Compute(p, slabs)
	if err != nil {
		return err
	}
	return writePDF(w, Build(p, res, cfg))
}

func writePDF(w io.Writer, d Data) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdfTranslator(pdf)

	pdf.SetTitle(d.Title, true)
	pdf.SetAuthor(d.Author, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("For education only. Not financial advice.  Page %d/{nb}", pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(126, 34, 206)
	pdf.CellFormat(0, 10, tr(d.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 5, tr("Generated "+d.GeneratedAt+" | "+d.Author), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(147, 51, 234)
	pdf.SetLineWidth(0.6)
	y := pdf.GetY() + 2
	pageW, _ := pdf.GetPageSize()
	pdf.Line(pdfMargin, y, pageW-pdfMargin, y)
	pdf.Ln(6)

	if len(d.Sections) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(31, 41, 55)
		pdf.CellFormat(0, pdfRowH, "Nothing to report.", "", 1, "L", false, 0, "")
	}

	for _, s := range d.Sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(88, 28, 135)
		pdf.CellFormat(0, 8, tr(s.Title), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(31, 41, 55)
		pdf.SetDrawColor(243, 232, 255)
		pdf.SetLineWidth(0.2)
		for _, r := range s.Rows {
			pdf.CellFormat(pdfLabelW, pdfRowH, tr(r.Label), "B", 0, "L", false, 0, "")
			pdf.CellFormat(0, pdfRowH, tr(r.Value), "B", 1, "R", false, 0, "")
		}

		if len(s.Bars) > 0 {
			pdf.Ln(2)
			drawBars(pdf, tr, s.Bars)
		}
		if s.HasPct {
			pdf.Ln(2)
			drawProgress(pdf, s.Percent)
		}
		pdf.Ln(5)
	}

	if pdf.Err() {
		return fmt.Errorf("building pdf: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func drawBars(pdf *fpdf.Fpdf, tr func(string) string, bars []Bar) {
	top := 0.0
	for _, b := range bars {
		if b.Value > top {
			top = b.Value
		}
	}
	if top <= 0 {
		top = 1
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetFillColor(147, 51, 234)
	for _, b := range bars {
		x, y := pdf.GetXY()
		pdf.CellFormat(pdfBarLabel, 5, tr(b.Label), "", 0, "L", false, 0, "")
		w := b.Value / top * pdfBarMaxW
		if w > 0 {
			pdf.Rect(x+pdfBarLabel, y+1, w, 3, "F")
		}
		pdf.SetXY(x+pdfBarLabel+w+2, y)
		pdf.CellFormat(0, 5, tr(utils.FormatRupees(b.Value)), "", 1, "L", false, 0, "")
	}
}

func drawProgress(pdf *fpdf.Fpdf, pct float64) {
	pct = max(0, min(100, pct))
	x, y := pdf.GetXY()
	const width, height = 120.0, 4.0
	pdf.SetFillColor(243, 232, 255)
	pdf.Rect(x, y, width, height, "F")
	if pct > 0 {
		pdf.SetFillColor(147, 51, 234)
		pdf.Rect(x, y, width*pct/100, height, "F")
	}
	pdf.SetXY(x+width+3, y-0.5)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("%.0f%%", pct), "", 1, "L", false, 0, "")
}

// pdfTranslator maps UTF-8 text onto the cp1252 core fonts. The rupee sign
// is outside cp1252, so it is spelled out.
func pdfTranslator(pdf *fpdf.Fpdf) func(string) string {
	toCP1252 := pdf.UnicodeTranslatorFromDescriptor("")
	rupee := strings.NewReplacer("-₹", "-Rs. ", "₹", "Rs. ", "■", "", "═", "=", "─", "-")
	return func(s string) string { return toCP1252(rupee.Replace(s)) }
}
