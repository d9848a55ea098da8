package objectstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers http.Header
}

func newFakeStorage(t *testing.T) (*fakeStorage, *Client) {
	t.Helper()
	fs := &fakeStorage{objects: make(map[string][]byte)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /storage/v1/object/{bucket}/{path...}", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.objects[r.PathValue("path")] = data
		fs.headers = r.Header.Clone()
		fs.mu.Unlock()
		w.Write([]byte(`{"Key":"ok"}`))
	})
	mux.HandleFunc("DELETE /storage/v1/object/{bucket}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prefixes []string `json:"prefixes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
			return
		}
		fs.mu.Lock()
		defer fs.mu.Unlock()
		for _, p := range body.Prefixes {
			if _, ok := fs.objects[p]; !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Object not found"}`))
				return
			}
			delete(fs.objects, p)
		}
		w.Write([]byte(`[]`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return fs, New(server.URL, "service-key", "")
}

func TestUploadAndRemove(t *testing.T) {
	fs, client := newFakeStorage(t)
	ctx := context.Background()

	publicURL, err := client.Upload(ctx, "p1/p1-abc.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(publicURL, "/storage/v1/object/public/product-images/p1/p1-abc.jpg"))
	assert.Equal(t, []byte("jpeg-bytes"), fs.objects["p1/p1-abc.jpg"])
	assert.Equal(t, "Bearer service-key", fs.headers.Get("Authorization"))
	assert.Equal(t, "service-key", fs.headers.Get("apikey"))
	assert.Equal(t, "true", fs.headers.Get("x-upsert"))
	assert.Equal(t, "max-age=3600", fs.headers.Get("Cache-Control"))

	path, ok := client.PathFromURL(publicURL)
	require.True(t, ok)
	assert.Equal(t, "p1/p1-abc.jpg", path)

	require.NoError(t, client.DeleteURL(ctx, publicURL))
	assert.Empty(t, fs.objects)

	err = client.Remove(ctx, "p1/p1-abc.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Object not found")
}

func TestPathFromURL(t *testing.T) {
	client := New("https://x.supabase.co/", "k", "product-images")

	path, ok := client.PathFromURL("https://x.supabase.co/storage/v1/object/public/product-images/a/b%20c.jpg?t=1")
	require.True(t, ok)
	assert.Equal(t, "a/b c.jpg", path)
	assert.Equal(t, "https://x.supabase.co/storage/v1/object/public/product-images/a/b%20c.jpg", client.PublicURL(path))

	_, ok = client.PathFromURL("https://elsewhere.example/img.jpg")
	assert.False(t, ok)

	err := client.DeleteURL(context.Background(), "https://elsewhere.example/img.jpg")
	assert.Error(t, err)
}

func TestRemoveNothing(t *testing.T) {
	client := New("http://127.0.0.1:1", "k", "")
	assert.NoError(t, client.Remove(context.Background()))
}
