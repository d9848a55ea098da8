// Package objectstore uploads and removes product images in a hosted
// Supabase-compatible storage bucket.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBucket holds product images.
const DefaultBucket = "product-images"

// cacheControl is the max-age in seconds set on uploaded objects.
const cacheControl = "3600"

// Client talks to the storage REST API.
type Client struct {
	baseURL string
	key     string
	bucket  string
	http    *http.Client
}

// New creates a storage client. An empty bucket selects DefaultBucket.
func New(baseURL, key, bucket string) *Client {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		bucket:  bucket,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload stores body at path, replacing any existing object, and returns
// its public URL.
func (c *Client) Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "", fmt.Errorf("uploading: empty path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(path), body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age="+cacheControl)
	req.Header.Set("x-upsert", "true")

	if err := c.do(req); err != nil {
		return "", fmt.Errorf("uploading %s: %w", path, err)
	}
	slog.Debug("uploaded object", "bucket", c.bucket, "path", path)
	return c.PublicURL(path), nil
}

// Remove deletes the objects at paths.
func (c *Client) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	data, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return fmt.Errorf("encoding remove request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/storage/v1/object/"+url.PathEscape(c.bucket), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building remove request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req); err != nil {
		return fmt.Errorf("removing %s: %w", strings.Join(paths, ", "), err)
	}
	return nil
}

// PublicURL returns the public URL of the object at path.
func (c *Client) PublicURL(path string) string {
	return c.publicPrefix() + escapePath(strings.TrimLeft(path, "/"))
}

// PathFromURL returns the object path of a public URL in this bucket.
func (c *Client) PathFromURL(raw string) (string, bool) {
	prefix := c.publicPrefix()
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	rest := raw[len(prefix):]
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	path, err := url.PathUnescape(rest)
	if err != nil || path == "" {
		return "", false
	}
	return path, true
}

// DeleteURL removes the object behind a public URL.
func (c *Client) DeleteURL(ctx context.Context, raw string) error {
	path, ok := c.PathFromURL(raw)
	if !ok {
		return fmt.Errorf("%s is not in bucket %s", raw, c.bucket)
	}
	return c.Remove(ctx, path)
}

func (c *Client) publicPrefix() string {
	return c.baseURL + "/storage/v1/object/public/" + url.PathEscape(c.bucket) + "/"
}

func (c *Client) objectURL(path string) string {
	return c.baseURL + "/storage/v1/object/" + url.PathEscape(c.bucket) + "/" + escapePath(path)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body) == nil {
			if body.Message != "" {
				return fmt.Errorf("storage: %s (status %d)", body.Message, resp.StatusCode)
			}
			if body.Error != "" {
				return fmt.Errorf("storage: %s (status %d)", body.Error, resp.StatusCode)
			}
		}
		return fmt.Errorf("storage: status %d", resp.StatusCode)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
