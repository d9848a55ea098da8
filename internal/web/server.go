// Package web serves the local storefront UI: the catalog, the quote cart,
// quote request and tracking pages, and the admin console.
package web

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/auth"
	"github.com/erazemk/storefront/internal/cart"
	"github.com/erazemk/storefront/internal/editor"
	"github.com/erazemk/storefront/internal/model"
	webembed "github.com/erazemk/storefront/web"
)

// PageData is the base data passed to all templates.
type PageData struct {
	Title     string
	CartCount int
	Admin     *model.Admin
	Error     string
	Notice    string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Templates *Templates
	API       *api.Client
	Cart      *cart.Store
	Session   *auth.Session
	Editor    *editor.Editor
	VATRate   decimal.Decimal
}

// NewRouter creates the page router with all routes registered.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	admin := s.RequireSession

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.CatalogPage)

	mux.HandleFunc("GET /cart", s.CartPage)
	mux.HandleFunc("POST /cart/add", s.CartAddSubmit)
	mux.HandleFunc("POST /cart/clear", s.CartClearSubmit)
	mux.HandleFunc("POST /cart/{id}/quantity", s.CartQuantitySubmit)
	mux.HandleFunc("POST /cart/{id}/message", s.CartMessageSubmit)
	mux.HandleFunc("POST /cart/{id}/remove", s.CartRemoveSubmit)

	mux.HandleFunc("GET /quote/request", s.QuoteRequestPage)
	mux.HandleFunc("POST /quote/request", s.QuoteRequestSubmit)
	mux.HandleFunc("POST /quote/verify", s.QuoteVerifySubmit)
	mux.HandleFunc("GET /quote/track", s.QuoteTrackPage)

	mux.HandleFunc("GET /admin/login", s.LoginPage)
	mux.HandleFunc("POST /admin/login", s.LoginSubmit)
	mux.HandleFunc("POST /admin/logout", s.LogoutSubmit)

	mux.Handle("GET /admin/quotes", admin(http.HandlerFunc(s.AdminQuotesPage)))
	mux.Handle("GET /admin/quotes/{id}", admin(http.HandlerFunc(s.AdminQuotePage)))
	mux.Handle("POST /admin/quotes/{id}/status", admin(http.HandlerFunc(s.AdminStatusSubmit)))
	mux.Handle("POST /admin/quotes/{id}/pricing", admin(http.HandlerFunc(s.AdminPricingSubmit)))
	mux.Handle("POST /admin/quotes/{id}/issue", admin(http.HandlerFunc(s.AdminIssueSubmit)))

	mux.Handle("GET /admin/products", admin(http.HandlerFunc(s.AdminProductsPage)))
	mux.Handle("POST /admin/products", admin(http.HandlerFunc(s.AdminProductSubmit)))
	mux.Handle("POST /admin/products/{id}/delete", admin(http.HandlerFunc(s.AdminProductDeleteSubmit)))

	return mux
}

// page returns the base page data for the current state.
func (s *Server) page(title string) PageData {
	pd := PageData{Title: title, CartCount: s.Cart.Count()}
	if s.Session.IsAuthenticated() {
		admin := s.Session.Admin()
		pd.Admin = &admin
	}
	return pd
}

// handleUnauthorized logs the admin out and sends them to the login page
// when err is an authorization failure. It reports whether it did so.
func (s *Server) handleUnauthorized(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	expireSession(ctx, s.Session, "rejected by api")
	http.Redirect(w, r, "/admin/login?expired=1", http.StatusSeeOther)
	return true
}

// renderError shows a full-page error message.
func (s *Server) renderError(w http.ResponseWriter, status int, title, message string) {
	pd := s.page(title)
	pd.Error = message
	s.Templates.RenderStatus(w, status, "error.html", &pd)
}
