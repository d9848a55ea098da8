package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/storefront/internal/model"
)

func TestBuildDocument(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	q := model.Quote{
		TrackingCode: "QT-ABC123",
		GuestName:    "Lerato",
		GuestEmail:   "lerato@example.com",
		Status:       "quoted",
		Items: []model.QuoteItem{
			{Product: model.QuoteProduct{Title: "Mill"}, Quantity: 2, UnitPrice: price("100.00")},
			{ProductID: "p2", Quantity: 1, UnitPrice: price("50.00"), Message: "blue"},
			{ProductID: "p3", Quantity: 4},
		},
	}

	doc := BuildDocument(q, DefaultVATRate, issued)

	assert.Equal(t, "QT-ABC123", doc.Number)
	assert.Equal(t, issued.Add(7*24*time.Hour), doc.ValidUntil)
	assert.Equal(t, "Quoted", doc.Status.Label)
	require.Len(t, doc.Lines, 3)
	assert.Equal(t, "Mill", doc.Lines[0].Title)
	assert.Equal(t, "200.00", doc.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "p2", doc.Lines[1].Title)
	assert.False(t, doc.Lines[2].Priced)
	assert.Equal(t, "287.50", doc.Totals.Total.StringFixed(2))
	assert.Equal(t, 1, doc.Totals.Unpriced)
}
