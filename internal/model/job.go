package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pendiente"
	PaymentStatusPaid      PaymentStatus = "Pagado"
	PaymentStatusCancelled PaymentStatus = "Cancelado"
)

// Job is confirmed, scheduled work. ScheduledAt is a single absolute
// timestamp; two jobs closer than the conflict window are considered to
// collide. QuoteID is set only when the job came out of a quote conversion.
type Job struct {
	ID            string         `json:"id"`
	ClientID      string         `json:"clienteId"`
	ClientName    string         `json:"clienteNombre"`
	Address       string         `json:"domicilio"`
	Phone         string         `json:"telefono"`
	WorkType      string         `json:"tipoTrabajo"`
	Description   string         `json:"trabajo"`
	Materials     []MaterialLine `json:"materiales"`
	MaterialsCost float64        `json:"costoMateriales"`
	LaborCost     float64        `json:"costoManoDeObra"`
	Total         float64        `json:"total"`
	ScheduledAt   time.Time      `json:"fecha"`
	Photos        []string       `json:"photos"`
	PaymentStatus PaymentStatus  `json:"estadoPago"`
	QuoteID       string         `json:"presupuestoId,omitempty"`
}

// ValidPaymentStatus reports whether s is one of the three known payment
// states.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}
