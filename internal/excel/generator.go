package excel

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/buscapolo/fieldops/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// MonthlySummary writes the month's aggregates on a summary sheet and the
// individual jobs on a detail sheet.
func (g *Generator) MonthlySummary(summary model.MonthlySummary) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Resumen"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, summary); err != nil {
		return nil, err
	}

	detailSheet := "Trabajos"
	if _, err := file.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	if err := g.writeDetail(file, detailSheet, summary); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, summary model.MonthlySummary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Período")
	set("B1", fmt.Sprintf("%s %d", monthName(summary.Month), summary.Year))
	set("A2", "Trabajos")
	set("B2", summary.JobCount)
	set("A3", "Total materiales")
	set("B3", summary.MaterialsTotal)
	set("A4", "Total mano de obra")
	set("B4", summary.LaborTotal)
	set("A5", "Total del mes")
	set("B5", summary.Total)
	set("A6", "Promedio materiales")
	set("B6", summary.AvgMaterials)
	set("A7", "Promedio mano de obra")
	set("B7", summary.AvgLabor)

	workTypes := make([]string, 0, len(summary.JobsByType))
	for workType := range summary.JobsByType {
		workTypes = append(workTypes, workType)
	}
	sort.Strings(workTypes)

	row := 9
	set(fmt.Sprintf("A%d", row), "Tipo de trabajo")
	set(fmt.Sprintf("B%d", row), "Cantidad")
	for _, workType := range workTypes {
		row++
		set(fmt.Sprintf("A%d", row), workType)
		set(fmt.Sprintf("B%d", row), summary.JobsByType[workType])
	}

	row += 2
	set(fmt.Sprintf("A%d", row), "Cliente")
	set(fmt.Sprintf("B%d", row), "Trabajos")
	for _, client := range summary.TopClients {
		row++
		set(fmt.Sprintf("A%d", row), client.ClientName)
		set(fmt.Sprintf("B%d", row), client.Jobs)
	}
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, summary model.MonthlySummary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Fecha", "Cliente", "Tipo", "Descripción", "Materiales", "Mano de obra", "Total", "Estado de pago"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for row, job := range summary.Jobs {
		values := []interface{}{
			job.ScheduledAt.Format("02/01/2006 15:04"),
			job.ClientName,
			job.WorkType,
			job.Description,
			job.MaterialsCost,
			job.LaborCost,
			job.Total,
			string(job.PaymentStatus),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			set(cell, value)
		}
	}
	return nil
}

func monthName(m time.Month) string {
	names := map[time.Month]string{
		time.January: "Enero", time.February: "Febrero", time.March: "Marzo",
		time.April: "Abril", time.May: "Mayo", time.June: "Junio",
		time.July: "Julio", time.August: "Agosto", time.September: "Septiembre",
		time.October: "Octubre", time.November: "Noviembre", time.December: "Diciembre",
	}
	if name, ok := names[m]; ok {
		return name
	}
	return m.String()
}
