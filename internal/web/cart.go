package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/cart"
)

// CartPage handles GET /cart.
func (s *Server) CartPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page("Your quote")
	pd.Notice = notice(r)

	s.Templates.Render(w, "cart.html", &struct {
		PageData
		Items []cart.LineItem
	}{
		PageData: pd,
		Items:    s.Cart.Items(),
	})
}

// CartAddSubmit handles POST /cart/add.
func (s *Server) CartAddSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("product_id")
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		quantity = 1
	}

	product, ok, err := s.findProduct(r, id)
	if err != nil {
		slog.Warn("failed to look up product", "product", id, "error", err)
		s.renderError(w, http.StatusBadGateway, "Products", api.Message(err))
		return
	}
	if !ok {
		s.renderError(w, http.StatusNotFound, "Products", "That product is no longer available.")
		return
	}

	ctx := r.Context()
	s.Cart.AddItem(ctx, product, quantity)
	if message := strings.TrimSpace(r.FormValue("message")); message != "" {
		s.Cart.SetMessage(ctx, product.ID, message)
	}
	slog.Info("added to cart", "product", product.ID, "quantity", quantity)

	http.Redirect(w, r, withNotice(localPath(r.FormValue("return"), "/"), "added"), http.StatusSeeOther)
}

// CartQuantitySubmit handles POST /cart/{id}/quantity.
func (s *Server) CartQuantitySubmit(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	s.Cart.SetQuantity(r.Context(), r.PathValue("id"), quantity)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// CartMessageSubmit handles POST /cart/{id}/message.
func (s *Server) CartMessageSubmit(w http.ResponseWriter, r *http.Request) {
	s.Cart.SetMessage(r.Context(), r.PathValue("id"), strings.TrimSpace(r.FormValue("message")))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// CartRemoveSubmit handles POST /cart/{id}/remove.
func (s *Server) CartRemoveSubmit(w http.ResponseWriter, r *http.Request) {
	s.Cart.RemoveItem(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// CartClearSubmit handles POST /cart/clear.
func (s *Server) CartClearSubmit(w http.ResponseWriter, r *http.Request) {
	s.Cart.Clear(r.Context())
	http.Redirect(w, r, "/cart?notice=cleared", http.StatusSeeOther)
}

// localPath returns p if it is a path on this site, otherwise fallback.
func localPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}

// withNotice sets the notice parameter of a local URL.
func withNotice(p, key string) string {
	u, err := url.Parse(p)
	if err != nil {
		return "/?notice=" + key
	}
	q := u.Query()
	q.Set("notice", key)
	u.RawQuery = q.Encode()
	return u.String()
}
