package excel

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/buscapolo/fieldops/internal/model"
)

func TestMonthlySummary_WorkTypeRowsOrdered(t *testing.T) {
	summary := model.MonthlySummary{
		Year:  2026,
		Month: time.March,
		JobsByType: map[string]int{
			"Plomería":     1,
			"Electricidad": 2,
			"Pintura":      3,
		},
		TopClients: []model.ClientCount{},
		Jobs:       []model.Job{},
	}

	content, err := NewGenerator().MonthlySummary(summary)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	var rows []string
	for row := 10; row <= 12; row++ {
		value, err := file.GetCellValue("Resumen", fmt.Sprintf("A%d", row))
		require.NoError(t, err)
		rows = append(rows, value)
	}
	assert.Equal(t, []string{"Electricidad", "Pintura", "Plomería"}, rows)
}

func TestMonthlySummary_DetailSheet(t *testing.T) {
	summary := model.MonthlySummary{
		Year:       2026,
		Month:      time.March,
		JobCount:   1,
		Total:      13000,
		JobsByType: map[string]int{"Electricidad": 1},
		TopClients: []model.ClientCount{{ClientName: "Gómez", Jobs: 1}},
		Jobs: []model.Job{{
			ID:            "j1",
			ClientName:    "Gómez",
			WorkType:      "Electricidad",
			Description:   "Tablero",
			ScheduledAt:   time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC),
			Total:         13000,
			PaymentStatus: model.PaymentStatusPending,
		}},
	}

	content, err := NewGenerator().MonthlySummary(summary)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	client, err := file.GetCellValue("Trabajos", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Gómez", client)

	status, err := file.GetCellValue("Trabajos", "H2")
	require.NoError(t, err)
	assert.Equal(t, "Pendiente", status)
}
