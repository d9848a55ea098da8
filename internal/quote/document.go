package quote

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/storefront/internal/model"
)

// ValidFor is how long an issued quote stays valid.
const ValidFor = 7 * 24 * time.Hour

// Document is the printable form of a priced quote.
type Document struct {
	Number       string
	TrackingCode string
	CustomerName string
	Email        string
	Status       Projection
	IssuedAt     time.Time
	ValidUntil   time.Time
	Lines        []DocumentLine
	Totals       Breakdown
}

// DocumentLine is one row of a printable quote.
type DocumentLine struct {
	Title     string
	Quantity  int
	Message   string
	Priced    bool
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// BuildDocument prepares q for printing. The quote number falls back to the
// tracking code.
func BuildDocument(q model.Quote, fallbackRate decimal.Decimal, issuedAt time.Time) Document {
	doc := Document{
		Number:       q.QuoteNumber,
		TrackingCode: q.TrackingCode,
		CustomerName: q.GuestName,
		Email:        q.GuestEmail,
		Status:       Project(q.Status),
		IssuedAt:     issuedAt,
		ValidUntil:   issuedAt.Add(ValidFor),
		Totals:       QuoteTotals(q, fallbackRate),
	}
	if doc.Number == "" {
		doc.Number = q.TrackingCode
	}

	for _, item := range q.Items {
		line := DocumentLine{
			Title:    item.Title(),
			Quantity: item.Quantity,
			Message:  item.Message,
			Priced:   item.UnitPrice.Valid,
		}
		if line.Priced {
			line.UnitPrice = item.UnitPrice.Decimal
			line.LineTotal = LineTotal(item.UnitPrice.Decimal, item.Quantity)
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}
