package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
)

// Submission is the API's answer to a quote request. Either TrackingCode is
// set, or VerificationRequired is true and the code sent to the customer's
// email must be confirmed with VerifyQuote.
type Submission struct {
	TrackingCode         string `json:"trackingCode"`
	VerificationRequired bool   `json:"verificationRequired,omitempty"`
	QuoteID              string `json:"quoteId,omitempty"`
}

// PriceLine sets the price of one quote item.
type PriceLine struct {
	ID        string          `json:"id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// MarshalJSON sends the unit price as a number with two decimals.
func (l PriceLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string      `json:"id"`
		UnitPrice json.Number `json:"unit_price"`
		Quantity  int         `json:"quantity"`
	}{l.ID, json.Number(l.UnitPrice.StringFixed(2)), l.Quantity})
}

// SubmitQuote sends a validated quote request.
func (c *Client) SubmitQuote(ctx context.Context, req quote.Request) (Submission, error) {
	if err := req.Validate(); err != nil {
		return Submission{}, err
	}
	sub, err := call[Submission](ctx, c, http.MethodPost, "/quotes", req)
	if err != nil {
		return Submission{}, errors.Wrap(err, "submitting quote")
	}
	if sub.TrackingCode == "" && !sub.VerificationRequired {
		return Submission{}, errors.New("submitting quote: response has no tracking code")
	}
	return sub, nil
}

// VerifyQuote confirms a pending submission with the emailed code.
func (c *Client) VerifyQuote(ctx context.Context, quoteID, code string) (Submission, error) {
	body := map[string]string{"code": code}
	sub, err := call[Submission](ctx, c, http.MethodPost, "/quotes/"+url.PathEscape(quoteID)+"/verify", body)
	if err != nil {
		return Submission{}, errors.Wrap(err, "verifying quote")
	}
	if sub.TrackingCode == "" {
		return Submission{}, errors.New("verifying quote: response has no tracking code")
	}
	return sub, nil
}

// TrackQuote looks a quote up by its tracking code.
func (c *Client) TrackQuote(ctx context.Context, code string) (model.Quote, error) {
	q, err := call[model.Quote](ctx, c, http.MethodGet, "/quotes/"+url.PathEscape(code), nil)
	if err != nil {
		return model.Quote{}, errors.Wrapf(err, "tracking quote %s", code)
	}
	return q, nil
}

// Quotes lists every quote. Requires an admin token.
func (c *Client) Quotes(ctx context.Context) ([]model.Quote, error) {
	quotes, err := call[[]model.Quote](ctx, c, http.MethodGet, "/quotes", nil)
	if err != nil {
		return nil, errors.Wrap(err, "listing quotes")
	}
	return quotes, nil
}

// FindQuote returns the quote with the given id from the admin list.
func (c *Client) FindQuote(ctx context.Context, id string) (model.Quote, error) {
	quotes, err := c.Quotes(ctx)
	if err != nil {
		return model.Quote{}, err
	}
	for _, q := range quotes {
		if q.ID == id {
			return q, nil
		}
	}
	return model.Quote{}, errors.Wrapf(ErrNotFound, "quote %s", id)
}

// UpdateStatus moves a quote to status. The server decides whether the
// transition is allowed.
func (c *Client) UpdateStatus(ctx context.Context, id string, status quote.Status) error {
	body := map[string]string{"status": string(status)}
	if _, err := call[any](ctx, c, http.MethodPut, "/quotes/"+url.PathEscape(id)+"/status", body); err != nil {
		return errors.Wrapf(err, "updating status of quote %s", id)
	}
	return nil
}

// UpdatePricing saves unit prices and quantities for quote items.
func (c *Client) UpdatePricing(ctx context.Context, id string, lines []PriceLine) error {
	body := map[string][]PriceLine{"items": lines}
	if _, err := call[any](ctx, c, http.MethodPut, "/quotes/"+url.PathEscape(id)+"/pricing", body); err != nil {
		return errors.Wrapf(err, "updating pricing of quote %s", id)
	}
	return nil
}

// IssueQuote finalizes a quote and has the server send it to the customer.
// lines, when given, are saved as part of issuing.
func (c *Client) IssueQuote(ctx context.Context, id string, lines []PriceLine) error {
	body := struct {
		Items []PriceLine `json:"items,omitempty"`
	}{Items: lines}
	if _, err := call[any](ctx, c, http.MethodPut, "/quotes/"+url.PathEscape(id)+"/issue", body); err != nil {
		return errors.Wrapf(err, "issuing quote %s", id)
	}
	return nil
}
