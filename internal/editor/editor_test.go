package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/storefront/internal/model"
)

type fakeProducts struct {
	products map[string]model.Product
	nextID   int
	deleted  []string
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: make(map[string]model.Product)}
}

func (f *fakeProducts) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	f.nextID++
	p.ID = fmt.Sprintf("prod-%d", f.nextID)
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, p model.Product) (model.Product, error) {
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id string) error {
	delete(f.products, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStorage struct {
	objects  map[string][]byte
	failOn   int
	uploads  int
	deleted  []string
	deleteOK bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte), deleteOK: true}
}

func (f *fakeStorage) Upload(_ context.Context, path, contentType string, body io.Reader) (string, error) {
	f.uploads++
	if f.failOn == f.uploads {
		return "", errors.New("connection reset")
	}
	data, _ := io.ReadAll(body)
	f.objects[path] = data
	return "https://cdn.test/" + path, nil
}

func (f *fakeStorage) DeleteURL(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	if !f.deleteOK {
		return errors.New("storage down")
	}
	delete(f.objects, strings.TrimPrefix(url, "https://cdn.test/"))
	return nil
}

func testPNG(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{shade, shade, shade, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveNewProductUploadsSequentially(t *testing.T) {
	products, storage := newFakeProducts(), newFakeStorage()
	ed := New(products, storage)

	draft := Draft{Product: model.Product{Title: "Hammer Mill", Category: "3"}}
	require.NoError(t, draft.Stage("a.png", testPNG(t, 10)))
	require.NoError(t, draft.Stage("b.png", testPNG(t, 200)))

	var calls [][2]int
	saved, err := ed.Save(context.Background(), draft, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, "prod-1", saved.ID)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
	require.Len(t, saved.ImageURLs, 2)
	for _, url := range saved.ImageURLs {
		assert.True(t, strings.HasPrefix(url, "https://cdn.test/prod-1/prod-1-"), url)
		assert.True(t, strings.HasSuffix(url, ".jpg"), url)
	}
	assert.Equal(t, saved, products.products["prod-1"])
}

func TestSaveFailureKeepsEarlierUploads(t *testing.T) {
	products, storage := newFakeProducts(), newFakeStorage()
	storage.failOn = 2
	ed := New(products, storage)

	draft := Draft{Product: model.Product{ID: "p9", Title: "Bag", Category: "1"}}
	require.NoError(t, draft.Stage("a.png", testPNG(t, 10)))
	require.NoError(t, draft.Stage("b.png", testPNG(t, 100)))
	require.NoError(t, draft.Stage("c.png", testPNG(t, 200)))

	_, err := ed.Save(context.Background(), draft, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.png (2 of 3)")
	assert.Len(t, storage.objects, 1)
	assert.NotContains(t, products.products, "p9", "product must not be updated after a failed upload")

	// Retrying the whole batch overwrites instead of duplicating.
	storage.failOn = 0
	saved, err := ed.Save(context.Background(), draft, nil)
	require.NoError(t, err)
	assert.Len(t, storage.objects, 3)
	assert.Len(t, saved.ImageURLs, 3)
}

func TestSaveDeletesRemovedImages(t *testing.T) {
	products, storage := newFakeProducts(), newFakeStorage()
	storage.objects["p1/old.jpg"] = []byte("x")
	storage.objects["p1/keep.jpg"] = []byte("y")
	ed := New(products, storage)

	draft := Draft{Product: model.Product{
		ID: "p1", Title: "Cable", Category: "4",
		ImageURLs: []string{"https://cdn.test/p1/old.jpg", "https://cdn.test/p1/keep.jpg"},
	}}
	draft.RemoveImage("https://cdn.test/p1/old.jpg")
	draft.RemoveImage("https://cdn.test/p1/unknown.jpg")

	saved, err := ed.Save(context.Background(), draft, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/p1/keep.jpg"}, saved.ImageURLs)
	assert.Equal(t, []string{"https://cdn.test/p1/old.jpg"}, storage.deleted)
	assert.NotContains(t, storage.objects, "p1/old.jpg")
}

func TestSaveIgnoresDeleteFailures(t *testing.T) {
	products, storage := newFakeProducts(), newFakeStorage()
	storage.deleteOK = false
	ed := New(products, storage)

	draft := Draft{Product: model.Product{ID: "p1", Title: "Cable", Category: "4", ImageURLs: []string{"https://cdn.test/p1/a.jpg"}}}
	draft.RemoveImage("https://cdn.test/p1/a.jpg")

	_, err := ed.Save(context.Background(), draft, nil)
	assert.NoError(t, err)
}

func TestSaveValidation(t *testing.T) {
	ed := New(newFakeProducts(), newFakeStorage())
	_, err := ed.Save(context.Background(), Draft{Product: model.Product{Category: "1"}}, nil)
	assert.EqualError(t, err, "title is required")

	var d Draft
	assert.Error(t, d.Stage("notes.txt", []byte("hello")))
	assert.Empty(t, d.Staged)
}

func TestDelete(t *testing.T) {
	products, storage := newFakeProducts(), newFakeStorage()
	storage.deleteOK = false
	ed := New(products, storage)

	p := model.Product{ID: "p3", ImageURLs: []string{"https://cdn.test/p3/a.jpg", "https://cdn.test/p3/b.jpg"}}
	require.NoError(t, ed.Delete(context.Background(), p))
	assert.Equal(t, []string{"p3"}, products.deleted)
	assert.Len(t, storage.deleted, 2)
}

func TestObjectPathIsContentAddressed(t *testing.T) {
	a := ObjectPath("p1", []byte("one"), ".jpg")
	assert.Equal(t, a, ObjectPath("p1", []byte("one"), ".jpg"))
	assert.NotEqual(t, a, ObjectPath("p1", []byte("two"), ".jpg"))
	assert.Regexp(t, `^p1/p1-[0-9a-f]{24}\.jpg$`, a)
}
