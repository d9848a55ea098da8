package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/catalog"
	"github.com/erazemk/storefront/internal/model"
)

var notices = map[string]string{
	"added":     "Added to your quote.",
	"cleared":   "Your quote cart has been cleared.",
	"submitted": "Your quote request has been submitted. Keep your tracking code to follow its progress.",
	"loggedout": "You have been logged out.",
	"saved":     "Product saved.",
	"deleted":   "Product deleted.",
	"status":    "Quote status updated.",
	"pricing":   "Pricing saved.",
	"issued":    "Quote issued and sent to the customer.",
}

// notice returns the message selected by the notice query parameter.
func notice(r *http.Request) string {
	return notices[r.URL.Query().Get("notice")]
}

// catalogView is the data of the catalog page.
type catalogView struct {
	PageData
	Query      catalog.Query
	Result     catalog.Result
	Categories []catalog.Category
	Pages      []int
	PageSizes  []int
	NoProducts bool
}

// PageURL links to page n of the current query.
func (v *catalogView) PageURL(n int) string {
	values := url.Values{}
	if v.Query.Search != "" {
		values.Set("q", v.Query.Search)
	}
	if v.Query.Category != "all" {
		values.Set("category", v.Query.Category)
	}
	if v.Query.Availability != catalog.AvailabilityAll {
		values.Set("availability", v.Query.Availability)
	}
	if v.Query.Sort != catalog.SortTitleAsc {
		values.Set("sort", v.Query.Sort)
	}
	if v.Query.PageSize != catalog.DefaultPageSize {
		values.Set("size", strconv.Itoa(v.Query.PageSize))
	}
	if n > 1 {
		values.Set("page", strconv.Itoa(n))
	}
	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}

// CatalogPage handles GET /.
func (s *Server) CatalogPage(w http.ResponseWriter, r *http.Request) {
	query := catalog.ParseQuery(r.URL.Query().Get)
	view := &catalogView{
		PageData:  s.page("Products"),
		Query:     query,
		PageSizes: catalog.PageSizes,
	}
	view.Notice = notice(r)

	products, err := s.API.Products(r.Context())
	if err != nil {
		slog.Warn("failed to list products", "error", err)
		view.Error = api.Message(err)
	}

	view.Result = catalog.Apply(products, query)
	view.Categories = catalog.CategoryOptions(products)
	view.Pages = catalog.PageWindow(view.Result.Page, view.Result.TotalPages)
	view.NoProducts = err == nil && len(products) == 0

	s.Templates.Render(w, "catalog.html", view)
}

// findProduct looks a product up in the catalog.
func (s *Server) findProduct(r *http.Request, id string) (model.Product, bool, error) {
	products, err := s.API.Products(r.Context())
	if err != nil {
		return model.Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return model.Product{}, false, nil
}
