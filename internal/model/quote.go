package model

import "time"

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "Pendiente"
	QuoteStatusAccepted QuoteStatus = "Aceptado"
	QuoteStatusRejected QuoteStatus = "Rechazado"
)

// Quote is a cost estimate awaiting client acceptance. Totals obey
// MaterialsTotal = Σ line subtotals and Total = MaterialsTotal + LaborCost;
// they are recomputed from the material list on every write, never edited
// directly.
type Quote struct {
	ID               string         `json:"id"`
	ClientID         string         `json:"clienteId"`
	ClientName       string         `json:"clienteNombre"`
	Phone            string         `json:"telefono"`
	Address          string         `json:"direccion"`
	WorkType         string         `json:"tipoTrabajo"`
	Description      string         `json:"descripcionTrabajo"`
	Materials        []MaterialLine `json:"materiales"`
	LaborCost        float64        `json:"costoManoDeObra"`
	MaterialsTotal   float64        `json:"totalMateriales"`
	Total            float64        `json:"total"`
	ValidUntil       time.Time      `json:"fechaValidez"`
	CreatedAt        time.Time      `json:"fechaCreacion"`
	Status           QuoteStatus    `json:"estado"`
	Photos           []string       `json:"photos"`
	ConvertedToJobID string         `json:"convertedToJobId,omitempty"`
}

// Active reports whether the quote still belongs on the pending list:
// not accepted, not rejected, and not past its validity date. A zero
// ValidUntil means the quote never expires.
func (q Quote) Active(now time.Time) bool {
	if q.Status == QuoteStatusAccepted || q.Status == QuoteStatusRejected {
		return false
	}
	return q.ValidUntil.IsZero() || !q.ValidUntil.Before(now)
}
