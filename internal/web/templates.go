package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/storefront/internal/catalog"
	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
	webembed "github.com/erazemk/storefront/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusLabel":  func(s string) string { return quote.Project(s).Label },
		"statusColor":  func(s string) string { return string(quote.Project(s).Color) },
		"categoryName": catalog.CategoryName,
		"money":        quote.FormatCurrency,
		"rate":         quote.FormatRate,
		"nullMoney": func(d decimal.NullDecimal) string {
			if !d.Valid {
				return "-"
			}
			return quote.FormatCurrency(d.Decimal)
		},
		"priceInput": func(d decimal.NullDecimal) string {
			if !d.Valid {
				return ""
			}
			return d.Decimal.StringFixed(2)
		},
		"quoteTotal": func(q model.Quote, rate decimal.Decimal) string {
			b := quote.QuoteTotals(q, rate)
			if b.Priced == 0 {
				return "-"
			}
			return quote.FormatCurrency(b.Total)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2 Jan 2006")
		},
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
	}
}

// pages lists every page template; each is parsed together with the layout.
var pages = []string{
	"catalog.html",
	"cart.html",
	"quote_request.html",
	"quote_verify.html",
	"quote_track.html",
	"admin_login.html",
	"admin_quotes.html",
	"admin_quote.html",
	"admin_products.html",
	"error.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with a non-200 status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}
