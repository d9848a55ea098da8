// Package cart holds the customer's pending quote-request selections and
// mirrors them to local storage after every change.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/store"
)

// Storage is the durable key/value backend the cart persists to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// LineItem is one product in the cart. Title and images are copied from the
// product when it is added and are not refreshed afterwards.
type LineItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	ImageURLs []string `json:"image_url,omitempty"`
	Quantity  int      `json:"quantity"`
	Message   string   `json:"message,omitempty"`
}

// Store is an ordered collection of line items keyed by product id.
type Store struct {
	storage Storage

	mu    sync.Mutex
	items []LineItem
}

// New creates a cart hydrated from storage. A missing entry yields an empty
// cart; an unreadable entry is discarded.
func New(ctx context.Context, storage Storage) *Store {
	s := &Store{storage: storage}

	raw, ok, err := storage.Get(ctx, store.KeyCart)
	if err != nil {
		slog.Warn("failed to read saved cart", "error", err)
		return s
	}
	if !ok {
		return s
	}

	items, err := Decode(raw)
	if err != nil {
		slog.Warn("discarding unreadable saved cart", "error", err)
		if err := storage.Remove(ctx, store.KeyCart); err != nil {
			slog.Warn("failed to remove unreadable cart", "error", err)
		}
		return s
	}
	s.items = items
	return s
}

// AddItem adds quantity units of product. A product already in the cart has
// its quantity increased instead of getting a second line. Quantities below
// one count as one.
func (s *Store) AddItem(ctx context.Context, product model.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(product.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, LineItem{
			ID:        product.ID,
			Title:     product.Title,
			ImageURLs: append([]string(nil), product.ImageURLs...),
			Quantity:  quantity,
		})
	}
	s.persist(ctx)
}

// RemoveItem drops the line for id. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)
	s.persist(ctx)
}

// SetQuantity overwrites the quantity for id. A quantity below one removes
// the line. Unknown ids are ignored.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.remove(id)
	} else if i := s.index(id); i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.persist(ctx)
}

// SetMessage attaches a customer note to the line for id.
func (s *Store) SetMessage(ctx context.Context, id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		s.items[i].Message = message
	}
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	for i, item := range s.items {
		item.ImageURLs = append([]string(nil), item.ImageURLs...)
		out[i] = item
	}
	return out
}

// Count returns the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) index(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) remove(id string) {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// persist writes the whole collection. Failures leave the in-memory cart
// intact and are only logged. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	raw, err := Encode(s.items)
	if err != nil {
		slog.Error("failed to encode cart", "error", err)
		return
	}
	if err := s.storage.Set(ctx, store.KeyCart, raw); err != nil {
		slog.Warn("failed to save cart", "error", err)
	}
}

// Encode serializes lines as a JSON array. An empty cart encodes as "[]".
func Encode(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a saved cart. Lines with a quantity below one are dropped and
// repeated ids are merged into the first occurrence.
func Decode(raw string) ([]LineItem, error) {
	var saved []LineItem
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return nil, err
	}

	var items []LineItem
	seen := make(map[string]int)
	for _, item := range saved {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := seen[item.ID]; ok {
			items[i].Quantity += item.Quantity
			continue
		}
		seen[item.ID] = len(items)
		items = append(items, item)
	}
	return items, nil
}
