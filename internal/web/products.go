package web

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/catalog"
	"github.com/erazemk/storefront/internal/editor"
	"github.com/erazemk/storefront/internal/imaging"
	"github.com/erazemk/storefront/internal/model"
)

// maxUploadForm bounds a product form with its images.
const maxUploadForm = 10 * imaging.MaxBytes

// productsView is the data of the admin products page.
type productsView struct {
	PageData
	Products   []model.Product
	Categories []catalog.Category
	Edit       *model.Product
}

// AdminProductsPage handles GET /admin/products. The edit parameter selects
// the product shown in the form.
func (s *Server) AdminProductsPage(w http.ResponseWriter, r *http.Request) {
	view := &productsView{PageData: s.page("Products"), Categories: catalog.Categories}
	view.Notice = notice(r)

	products, err := s.API.Products(r.Context())
	if err != nil {
		slog.Warn("failed to list products", "error", err)
		view.Error = api.Message(err)
	}
	view.Products = products

	if id := r.URL.Query().Get("edit"); id != "" {
		for i := range products {
			if products[i].ID == id {
				view.Edit = &products[i]
			}
		}
	}

	s.Templates.Render(w, "admin_products.html", view)
}

// AdminProductSubmit handles POST /admin/products. A form without an id
// creates a product.
func (s *Server) AdminProductSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadForm)
	if err := r.ParseMultipartForm(maxUploadForm); err != nil {
		s.renderProductForm(w, r, nil, "The upload is too large.")
		return
	}

	draft := editor.Draft{Product: model.Product{
		ID:          strings.TrimSpace(r.FormValue("id")),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    r.FormValue("category"),
		PriceRange:  strings.TrimSpace(r.FormValue("price_range")),
		Available:   r.FormValue("available") != "",
	}}

	if draft.Product.ID != "" {
		current, ok, err := s.findProduct(r, draft.Product.ID)
		if err != nil {
			s.renderProductForm(w, r, &draft.Product, api.Message(err))
			return
		}
		if !ok {
			s.renderError(w, http.StatusNotFound, "Products", "Product not found.")
			return
		}
		draft.Product.ImageURLs = current.ImageURLs
		for _, url := range r.MultipartForm.Value["remove_image"] {
			draft.RemoveImage(url)
		}
	}

	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			s.renderProductForm(w, r, &draft.Product, "Could not read "+fh.Filename+".")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, imaging.MaxBytes+1))
		f.Close()
		if err != nil {
			s.renderProductForm(w, r, &draft.Product, "Could not read "+fh.Filename+".")
			return
		}
		if err := draft.Stage(fh.Filename, data); err != nil {
			s.renderProductForm(w, r, &draft.Product, err.Error())
			return
		}
	}

	saved, err := s.Editor.Save(r.Context(), draft, func(done, total int) {
		slog.Info("uploaded product image", "product", draft.Product.Title, "done", done, "total", total)
	})
	if err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		slog.Warn("failed to save product", "product", draft.Product.ID, "error", err)
		if saved.ID != "" {
			draft.Product.ID = saved.ID
		}
		s.renderProductForm(w, r, &draft.Product, api.Message(err))
		return
	}

	slog.Info("product saved", "id", saved.ID, "title", saved.Title, "admin", s.Session.Admin().Email)
	http.Redirect(w, r, "/admin/products?notice=saved", http.StatusSeeOther)
}

// AdminProductDeleteSubmit handles POST /admin/products/{id}/delete.
func (s *Server) AdminProductDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, ok, err := s.findProduct(r, id)
	if err != nil {
		s.renderProductForm(w, r, nil, api.Message(err))
		return
	}
	if !ok {
		s.renderError(w, http.StatusNotFound, "Products", "Product not found.")
		return
	}

	if err := s.Editor.Delete(r.Context(), product); err != nil {
		if s.handleUnauthorized(r.Context(), w, r, err) {
			return
		}
		slog.Warn("failed to delete product", "product", id, "error", err)
		s.renderProductForm(w, r, nil, api.Message(err))
		return
	}
	http.Redirect(w, r, "/admin/products?notice=deleted", http.StatusSeeOther)
}

// renderProductForm shows the products page with an error, keeping the
// submitted values in the form.
func (s *Server) renderProductForm(w http.ResponseWriter, r *http.Request, edit *model.Product, errText string) {
	view := &productsView{PageData: s.page("Products"), Categories: catalog.Categories, Edit: edit}
	view.Error = errText

	products, err := s.API.Products(r.Context())
	if err != nil {
		slog.Warn("failed to list products", "error", err)
	}
	view.Products = products

	s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "admin_products.html", view)
}
