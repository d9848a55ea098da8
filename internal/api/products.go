package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"

	"github.com/erazemk/storefront/internal/model"
)

// Products returns the full catalog.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	products, err := call[[]model.Product](ctx, c, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return products, nil
}

// CreateProduct adds p to the catalog and returns it with its new id.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = ""
	created, err := call[model.Product](ctx, c, http.MethodPost, "/products", p)
	if err != nil {
		return model.Product{}, errors.Wrap(err, "creating product")
	}
	if created.ID == "" {
		return model.Product{}, errors.New("creating product: response has no id")
	}
	return created, nil
}

// UpdateProduct replaces the product with p.ID.
func (c *Client) UpdateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		return model.Product{}, errors.New("updating product: missing id")
	}
	updated, err := call[model.Product](ctx, c, http.MethodPut, "/products/"+url.PathEscape(p.ID), p)
	if err != nil {
		return model.Product{}, errors.Wrapf(err, "updating product %s", p.ID)
	}
	if updated.ID == "" {
		updated = p
	}
	return updated, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if _, err := call[any](ctx, c, http.MethodDelete, "/products/"+url.PathEscape(id), nil); err != nil {
		return errors.Wrapf(err, "deleting product %s", id)
	}
	return nil
}
