package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a customer's pricing request as reported by the remote API.
type Quote struct {
	ID           string              `json:"id"`
	TrackingCode string              `json:"tracking_code"`
	QuoteNumber  string              `json:"quote_number,omitempty"`
	GuestName    string              `json:"guest_name"`
	GuestEmail   string              `json:"guest_email"`
	Status       string              `json:"status"`
	Notes        string              `json:"notes,omitempty"`
	AdminNotes   string              `json:"admin_notes,omitempty"`
	Verified     bool                `json:"verified,omitempty"`
	VATRate      decimal.NullDecimal `json:"vat_rate"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Items        []QuoteItem         `json:"quote_items"`
}

// QuoteProduct is the product summary embedded in a quote line.
type QuoteProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"image_url,omitempty"`
}

// QuoteItem is one requested product within a quote. Prices are unset until
// an admin prices the quote; the API sends them as strings or numbers.
type QuoteItem struct {
	ID         string              `json:"id"`
	ProductID  string              `json:"product_id"`
	Product    QuoteProduct        `json:"product"`
	Quantity   int                 `json:"quantity"`
	Message    string              `json:"message,omitempty"`
	UnitPrice  decimal.NullDecimal `json:"unit_price"`
	TotalPrice decimal.NullDecimal `json:"total_price"`
}

// Title returns the product title, falling back to the product id.
func (i QuoteItem) Title() string {
	if i.Product.Title != "" {
		return i.Product.Title
	}
	return i.ProductID
}

// Title names the quote by its number once issued, otherwise by its
// tracking code.
func (q Quote) Title() string {
	if q.QuoteNumber != "" {
		return q.QuoteNumber
	}
	return q.TrackingCode
}
