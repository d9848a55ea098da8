// Package editor saves admin product edits together with their images.
package editor

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/erazemk/storefront/internal/imaging"
	"github.com/erazemk/storefront/internal/model"
)

// Products is the part of the API the editor writes through.
type Products interface {
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Storage holds uploaded images.
type Storage interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error)
	DeleteURL(ctx context.Context, url string) error
}

// StagedFile is a local image waiting to be uploaded.
type StagedFile struct {
	Name string
	Data []byte
}

// Draft is a product being edited. Staged files are uploaded and Removed
// image URLs are deleted when the draft is saved.
type Draft struct {
	Product model.Product
	Staged  []StagedFile
	Removed []string
}

// Stage validates and queues an image for upload.
func (d *Draft) Stage(name string, data []byte) error {
	if err := imaging.Validate(name, data); err != nil {
		return err
	}
	d.Staged = append(d.Staged, StagedFile{Name: name, Data: data})
	return nil
}

// Unstage drops the staged file at index i.
func (d *Draft) Unstage(i int) {
	if i >= 0 && i < len(d.Staged) {
		d.Staged = slices.Delete(d.Staged, i, i+1)
	}
}

// RemoveImage detaches an existing image; it is deleted from storage once
// the draft is saved.
func (d *Draft) RemoveImage(url string) {
	i := slices.Index(d.Product.ImageURLs, url)
	if i < 0 {
		return
	}
	d.Product.ImageURLs = slices.Delete(slices.Clone(d.Product.ImageURLs), i, i+1)
	d.Removed = append(d.Removed, url)
}

// Validate checks the fields the API requires.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Product.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(d.Product.Category) == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

// Progress is told how many staged files have been uploaded.
type Progress func(done, total int)

// Editor saves drafts.
type Editor struct {
	products Products
	storage  Storage
}

// New creates an editor.
func New(products Products, storage Storage) *Editor {
	return &Editor{products: products, storage: storage}
}

// Save writes draft. A new product is created first so its id can name the
// uploads. Staged files are uploaded one at a time; if one fails, Save
// returns the error and the files before it stay uploaded. Object names are
// derived from content so saving the same draft again overwrites them.
func (e *Editor) Save(ctx context.Context, draft Draft, progress Progress) (model.Product, error) {
	if err := draft.Validate(); err != nil {
		return model.Product{}, err
	}

	product := draft.Product
	if product.ID == "" {
		created, err := e.products.CreateProduct(ctx, product)
		if err != nil {
			return model.Product{}, err
		}
		product.ID = created.ID
		slog.Info("product created", "id", product.ID, "title", product.Title)
	}

	total := len(draft.Staged)
	for i, file := range draft.Staged {
		url, err := e.upload(ctx, product.ID, file)
		if err != nil {
			return product, fmt.Errorf("uploading %s (%d of %d): %w", file.Name, i+1, total, err)
		}
		if !slices.Contains(product.ImageURLs, url) {
			product.ImageURLs = append(product.ImageURLs, url)
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	saved, err := e.products.UpdateProduct(ctx, product)
	if err != nil {
		return product, err
	}

	for _, url := range draft.Removed {
		if slices.Contains(saved.ImageURLs, url) {
			continue
		}
		if err := e.storage.DeleteURL(ctx, url); err != nil {
			slog.Warn("deleting product image", "product", saved.ID, "url", url, "error", err)
		}
	}
	return saved, nil
}

func (e *Editor) upload(ctx context.Context, productID string, file StagedFile) (string, error) {
	img, err := imaging.Process(bytes.NewReader(file.Data))
	if err != nil {
		return "", err
	}
	return e.storage.Upload(ctx, ObjectPath(productID, img.Data, img.Ext()), img.MIME, bytes.NewReader(img.Data))
}

// Delete removes the product, then its images. Image deletion failures are
// logged only.
func (e *Editor) Delete(ctx context.Context, product model.Product) error {
	if err := e.products.DeleteProduct(ctx, product.ID); err != nil {
		return err
	}
	for _, url := range product.ImageURLs {
		if err := e.storage.DeleteURL(ctx, url); err != nil {
			slog.Warn("deleting product image", "product", product.ID, "url", url, "error", err)
		}
	}
	slog.Info("product deleted", "id", product.ID)
	return nil
}

// ObjectPath names an upload by product and content:
// <productID>/<productID>-<hash><ext>.
func ObjectPath(productID string, data []byte, ext string) string {
	sum := blake2b.Sum256(data)
	return productID + "/" + productID + "-" + hex.EncodeToString(sum[:12]) + ext
}
