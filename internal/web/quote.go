package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/cart"
	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
)

// requestForm is the data of the quote request page.
type requestForm struct {
	PageData
	Items   []cart.LineItem
	Name    string
	Email   string
	Message string
	Field   string
}

// QuoteRequestPage handles GET /quote/request.
func (s *Server) QuoteRequestPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "quote_request.html", &requestForm{
		PageData: s.page("Request a quote"),
		Items:    s.Cart.Items(),
	})
}

// QuoteRequestSubmit handles POST /quote/request.
func (s *Server) QuoteRequestSubmit(w http.ResponseWriter, r *http.Request) {
	form := &requestForm{
		PageData: s.page("Request a quote"),
		Items:    s.Cart.Items(),
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Message:  strings.TrimSpace(r.FormValue("message")),
	}

	req := quote.RequestFromCart(form.Name, form.Email, form.Message, form.Items)
	if err := req.Validate(); err != nil {
		var verr *quote.ValidationError
		if errors.As(err, &verr) {
			form.Field = verr.Field
			form.Error = verr.Message
		} else {
			form.Error = err.Error()
		}
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "quote_request.html", form)
		return
	}

	sub, err := s.API.SubmitQuote(r.Context(), req)
	if err != nil {
		slog.Warn("failed to submit quote", "error", err)
		form.Error = api.Message(err)
		s.Templates.Render(w, "quote_request.html", form)
		return
	}

	if sub.VerificationRequired {
		slog.Info("quote awaiting verification", "quote", sub.QuoteID)
		s.Templates.Render(w, "quote_verify.html", &verifyForm{
			PageData: s.page("Verify your email"),
			QuoteID:  sub.QuoteID,
			Email:    form.Email,
		})
		return
	}

	s.submitted(w, r, sub.TrackingCode)
}

// verifyForm is the data of the email verification page.
type verifyForm struct {
	PageData
	QuoteID string
	Email   string
}

// QuoteVerifySubmit handles POST /quote/verify.
func (s *Server) QuoteVerifySubmit(w http.ResponseWriter, r *http.Request) {
	form := &verifyForm{
		PageData: s.page("Verify your email"),
		QuoteID:  r.FormValue("quote_id"),
		Email:    r.FormValue("email"),
	}
	code := strings.TrimSpace(r.FormValue("code"))
	if form.QuoteID == "" || code == "" {
		form.Error = "Enter the verification code from your email."
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "quote_verify.html", form)
		return
	}

	sub, err := s.API.VerifyQuote(r.Context(), form.QuoteID, code)
	if err != nil {
		slog.Warn("failed to verify quote", "quote", form.QuoteID, "error", err)
		form.Error = api.Message(err)
		s.Templates.Render(w, "quote_verify.html", form)
		return
	}

	s.submitted(w, r, sub.TrackingCode)
}

// submitted empties the cart and shows the tracking page of a new quote.
func (s *Server) submitted(w http.ResponseWriter, r *http.Request, code string) {
	s.Cart.Clear(r.Context())
	slog.Info("quote submitted", "tracking_code", code)
	http.Redirect(w, r, "/quote/track?notice=submitted&code="+url.QueryEscape(code), http.StatusSeeOther)
}

// QuoteTrackPage handles GET /quote/track.
func (s *Server) QuoteTrackPage(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	data := &struct {
		PageData
		Code     string
		Quote    *model.Quote
		View     quote.CustomerView
		Document *quote.Document
	}{
		PageData: s.page("Track your quote"),
		Code:     code,
	}
	data.Notice = notice(r)

	if code != "" {
		q, err := s.API.TrackQuote(r.Context(), code)
		if err != nil {
			slog.Warn("failed to track quote", "tracking_code", code, "error", err)
			data.Error = api.Message(err)
		} else {
			data.Quote = &q
			data.View = quote.ForCustomer(q.Status)
			if data.View.ShowDocument {
				issued := q.UpdatedAt
				if issued.IsZero() {
					issued = time.Now()
				}
				doc := quote.BuildDocument(q, s.VATRate, issued)
				data.Document = &doc
			}
		}
	}

	s.Templates.Render(w, "quote_track.html", data)
}
