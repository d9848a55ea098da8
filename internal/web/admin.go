package web

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
)

// LoginPage handles GET /admin/login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if s.Session.IsAuthenticated() {
		http.Redirect(w, r, "/admin/quotes", http.StatusSeeOther)
		return
	}
	pd := s.page("Admin login")
	pd.Notice = notice(r)
	if r.URL.Query().Get("expired") != "" {
		pd.Error = "Your session has expired. Please log in again."
	}
	s.Templates.Render(w, "admin_login.html", &pd)
}

// LoginSubmit handles POST /admin/login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	pd := s.page("Admin login")
	if email == "" || password == "" {
		pd.Error = "Enter your email and password."
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "admin_login.html", &pd)
		return
	}

	res, err := s.API.Login(r.Context(), email, password)
	if err != nil {
		slog.Warn("admin login failed", "email", email, "error", err)
		pd.Error = api.Message(err)
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "admin_login.html", &pd)
		return
	}

	if err := s.Session.Login(r.Context(), res.Token, res.Admin); err != nil {
		slog.Error("failed to store admin session", "error", err)
		pd.Error = "Could not save your session."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "admin_login.html", &pd)
		return
	}

	slog.Info("admin logged in", "admin", res.Admin.Email)
	http.Redirect(w, r, "/admin/quotes", http.StatusSeeOther)
}

// LogoutSubmit handles POST /admin/logout.
func (s *Server) LogoutSubmit(w http.ResponseWriter, r *http.Request) {
	expireSession(r.Context(), s.Session, "logout")
	http.Redirect(w, r, "/admin/login?notice=loggedout", http.StatusSeeOther)
}

// AdminQuotesPage handles GET /admin/quotes.
func (s *Server) AdminQuotesPage(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	data := &struct {
		PageData
		Quotes   []model.Quote
		Statuses []quote.Status
		Filter   string
		Counts   map[string]int
		VATRate  decimal.Decimal
	}{
		PageData: s.page("Quotes"),
		Statuses: quote.Statuses,
		Filter:   filter,
		Counts:   make(map[string]int),
		VATRate:  s.VATRate,
	}
	data.Notice = notice(r)

	quotes, err := s.API.Quotes(r.Context())
	if err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		slog.Warn("failed to list quotes", "error", err)
		data.Error = api.Message(err)
	}

	for _, q := range quotes {
		data.Counts[q.Status]++
		if filter == "" || q.Status == filter {
			data.Quotes = append(data.Quotes, q)
		}
	}
	slices.SortStableFunc(data.Quotes, func(a, b model.Quote) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.Templates.Render(w, "admin_quotes.html", data)
}

// quoteView is the data of the admin quote page.
type quoteView struct {
	PageData
	Quote   model.Quote
	Actions quote.AdminActions
	Totals  quote.Breakdown
}

// AdminQuotePage handles GET /admin/quotes/{id}.
func (s *Server) AdminQuotePage(w http.ResponseWriter, r *http.Request) {
	s.renderQuote(w, r, r.PathValue("id"), notice(r), "")
}

func (s *Server) renderQuote(w http.ResponseWriter, r *http.Request, id, noticeText, errText string) {
	q, err := s.API.FindQuote(r.Context(), id)
	if err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		if errors.Is(err, api.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "Quote", "Quote not found.")
			return
		}
		slog.Warn("failed to load quote", "quote", id, "error", err)
		s.renderError(w, http.StatusBadGateway, "Quote", api.Message(err))
		return
	}

	view := &quoteView{
		PageData: s.page(q.Title()),
		Quote:    q,
		Actions:  quote.Actions(q.Status),
		Totals:   quote.QuoteTotals(q, s.VATRate),
	}
	view.Notice = noticeText
	view.Error = errText
	s.Templates.Render(w, "admin_quote.html", view)
}

// AdminStatusSubmit handles POST /admin/quotes/{id}/status.
func (s *Server) AdminStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status := quote.Status(r.FormValue("status"))
	if !status.Valid() {
		s.renderQuote(w, r, id, "", "Choose a valid status.")
		return
	}

	if err := s.API.UpdateStatus(r.Context(), id, status); err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		slog.Warn("failed to update quote status", "quote", id, "status", status, "error", err)
		s.renderQuote(w, r, id, "", api.Message(err))
		return
	}

	slog.Info("quote status updated", "quote", id, "status", status, "admin", s.Session.Admin().Email)
	http.Redirect(w, r, "/admin/quotes/"+id+"?notice=status", http.StatusSeeOther)
}

// AdminPricingSubmit handles POST /admin/quotes/{id}/pricing.
func (s *Server) AdminPricingSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lines, err := parsePriceLines(r)
	if err != nil {
		s.renderQuote(w, r, id, "", err.Error())
		return
	}
	if len(lines) == 0 {
		s.renderQuote(w, r, id, "", "Enter at least one unit price.")
		return
	}

	if err := s.API.UpdatePricing(r.Context(), id, lines); err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		slog.Warn("failed to update pricing", "quote", id, "error", err)
		s.renderQuote(w, r, id, "", api.Message(err))
		return
	}

	slog.Info("quote priced", "quote", id, "lines", len(lines), "admin", s.Session.Admin().Email)
	http.Redirect(w, r, "/admin/quotes/"+id+"?notice=pricing", http.StatusSeeOther)
}

// AdminIssueSubmit handles POST /admin/quotes/{id}/issue.
func (s *Server) AdminIssueSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lines, err := parsePriceLines(r)
	if err != nil {
		s.renderQuote(w, r, id, "", err.Error())
		return
	}

	q, err := s.API.FindQuote(r.Context(), id)
	if err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		if errors.Is(err, api.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "Quote", "Quote not found.")
			return
		}
		slog.Warn("failed to load quote", "quote", id, "error", err)
		s.renderError(w, http.StatusBadGateway, "Quote", api.Message(err))
		return
	}
	if !quote.Actions(q.Status).CanIssue {
		s.renderQuote(w, r, id, "", "This quote has already been issued.")
		return
	}

	if err := s.API.IssueQuote(r.Context(), id, lines); err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		slog.Warn("failed to issue quote", "quote", id, "error", err)
		s.renderQuote(w, r, id, "", api.Message(err))
		return
	}

	slog.Info("quote issued", "quote", id, "admin", s.Session.Admin().Email)
	http.Redirect(w, r, "/admin/quotes/"+id+"?notice=issued", http.StatusSeeOther)
}

// parsePriceLines reads the parallel item_id, unit_price and quantity form
// fields. Items with a blank price are skipped.
func parsePriceLines(r *http.Request) ([]api.PriceLine, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.Wrap(err, "reading form")
	}
	ids := r.PostForm["item_id"]
	prices := r.PostForm["unit_price"]
	quantities := r.PostForm["quantity"]

	var lines []api.PriceLine
	for i, id := range ids {
		raw := strings.TrimSpace(strings.ReplaceAll(at(prices, i), ",", "."))
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			return nil, errors.Errorf("%q is not a valid price", at(prices, i))
		}
		qty, err := strconv.Atoi(strings.TrimSpace(at(quantities, i)))
		if err != nil || qty < 1 {
			return nil, errors.Errorf("quantity for item %d must be at least 1", i+1)
		}
		lines = append(lines, api.PriceLine{ID: id, UnitPrice: quote.Round(price), Quantity: qty})
	}
	return lines, nil
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
