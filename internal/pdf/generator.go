package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/buscapolo/fieldops/internal/costing"
	"github.com/buscapolo/fieldops/internal/model"
)

// Generator renders work receipts. Core latin fonts cover the Spanish
// field content; accents go through the cp1252 translator.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// JobReceipt renders the scheduled-work receipt handed to the client:
// who, where, when, what, the material lines and the totals.
func (g *Generator) JobReceipt(job model.Job) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Comprobante de trabajo programado"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Cliente: %s", job.ClientName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Domicilio: %s", safeValue(job.Address))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Teléfono: %s", safeValue(job.Phone))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Fecha: %s", formatDateTime(job.ScheduledAt))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Tipo: %s", safeValue(job.WorkType))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Descripción"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr(job.Description), "", "L", false)
	pdf.Ln(2)

	g.materialsTable(pdf, tr, job.Materials)

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Materiales: $%s", formatAmount(job.MaterialsCost, 2))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Mano de obra: $%s", formatAmount(job.LaborCost, 2))), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Total: $%s", formatAmount(job.Total, 2))), "", 1, "R", false, 0, "")

	return output(pdf)
}

// QuoteDocument renders a quote for the client, including its validity
// date and current status.
func (g *Generator) QuoteDocument(quote model.Quote) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Presupuesto"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Cliente: %s", quote.ClientName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Dirección: %s", safeValue(quote.Address))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Tipo: %s", safeValue(quote.WorkType))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Estado: %s", quote.Status)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Válido hasta: %s", formatDate(quote.ValidUntil))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Descripción"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr(quote.Description), "", "L", false)
	pdf.Ln(2)

	g.materialsTable(pdf, tr, quote.Materials)

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Materiales: $%s", formatAmount(quote.MaterialsTotal, 2))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Mano de obra: $%s", formatAmount(quote.LaborCost, 2))), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Total: $%s", formatAmount(quote.Total, 2))), "", 1, "R", false, 0, "")

	return output(pdf)
}

func (g *Generator) materialsTable(pdf *gofpdf.Fpdf, tr func(string) string, lines []model.MaterialLine) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Materiales"), "", 1, "L", false, 0, "")

	headers := []string{"Descripción", "Cantidad", "Precio unit.", "Subtotal"}
	widths := []float64{90, 25, 30, 35}
	drawTableRow(pdf, g.fontName, tr, headers, widths, true)

	for _, line := range lines {
		row := []string{
			line.Description,
			line.Quantity,
			formatAmount(costing.ParseAmount(line.UnitPrice), 2),
			formatAmount(costing.Subtotal(line), 2),
		}
		drawTableRow(pdf, g.fontName, tr, row, widths, false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}
