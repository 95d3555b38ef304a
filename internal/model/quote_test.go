package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuoteActive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		quote  Quote
		active bool
	}{
		{name: "pending and valid", quote: Quote{Status: QuoteStatusPending, ValidUntil: now.AddDate(0, 0, 10)}, active: true},
		{name: "pending without expiry", quote: Quote{Status: QuoteStatusPending}, active: true},
		{name: "valid until today", quote: Quote{Status: QuoteStatusPending, ValidUntil: now}, active: true},
		{name: "expired", quote: Quote{Status: QuoteStatusPending, ValidUntil: now.AddDate(0, 0, -1)}, active: false},
		{name: "accepted", quote: Quote{Status: QuoteStatusAccepted, ValidUntil: now.AddDate(0, 0, 10)}, active: false},
		{name: "rejected", quote: Quote{Status: QuoteStatusRejected, ValidUntil: now.AddDate(0, 0, 10)}, active: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.active, tc.quote.Active(now))
		})
	}
}

func TestFilterMaterials(t *testing.T) {
	lines := []MaterialLine{
		{Description: "Caño", Quantity: "2", UnitPrice: "1500"},
		{Description: "   ", Quantity: "1", UnitPrice: "999"},
		{Description: "Codo", Quantity: "", UnitPrice: ""},
	}

	filtered := FilterMaterials(lines)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "Caño", filtered[0].Description)
	assert.Equal(t, "Codo", filtered[1].Description, "empty amounts are kept, they just cost 0")
}
