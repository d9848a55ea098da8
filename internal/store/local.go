package store

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/storefront/internal/broadcast"
)

// Well-known local storage keys.
const (
	KeyCart       = "quoteCart"
	KeyAdminToken = "adminToken"
	KeyAdminUser  = "adminUser"
)

// Local is the durable key/value store shared by the cart and the admin
// session. Every write is announced on the hub; Sync announces writes made
// by other processes sharing the same database file.
type Local struct {
	db  *sql.DB
	hub *broadcast.Hub

	mu   sync.Mutex
	seen map[string]string
}

// NewLocal wraps db. The current contents become the baseline for Sync.
func NewLocal(ctx context.Context, db *sql.DB, hub *broadcast.Hub) (*Local, error) {
	values, err := ListValues(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Local{db: db, hub: hub, seen: values}, nil
}

// Hub returns the change notification hub.
func (l *Local) Hub() *broadcast.Hub {
	return l.hub
}

// Get returns the value for key.
func (l *Local) Get(ctx context.Context, key string) (string, bool, error) {
	return GetValue(ctx, l.db, key)
}

// Set stores value under key and announces the change.
func (l *Local) Set(ctx context.Context, key, value string) error {
	l.mu.Lock()
	if err := SetValue(ctx, l.db, key, value); err != nil {
		l.mu.Unlock()
		return err
	}
	l.seen[key] = value
	l.mu.Unlock()

	l.hub.Publish(broadcast.Event{Key: key, Value: value})
	return nil
}

// Remove deletes key and announces the change.
func (l *Local) Remove(ctx context.Context, key string) error {
	l.mu.Lock()
	if err := DeleteValue(ctx, l.db, key); err != nil {
		l.mu.Unlock()
		return err
	}
	delete(l.seen, key)
	l.mu.Unlock()

	l.hub.Publish(broadcast.Event{Key: key, Removed: true})
	return nil
}

// Sync compares the database with the values this process last saw and
// publishes an event for each key another process changed. It returns the
// number of events published.
func (l *Local) Sync(ctx context.Context) (int, error) {
	l.mu.Lock()
	current, err := ListValues(ctx, l.db)
	if err != nil {
		l.mu.Unlock()
		return 0, err
	}

	var events []broadcast.Event
	for key, value := range current {
		if old, ok := l.seen[key]; !ok || old != value {
			events = append(events, broadcast.Event{Key: key, Value: value})
		}
	}
	for key := range l.seen {
		if _, ok := current[key]; !ok {
			events = append(events, broadcast.Event{Key: key, Removed: true})
		}
	}
	l.seen = current
	l.mu.Unlock()

	for _, ev := range events {
		l.hub.Publish(ev)
	}
	return len(events), nil
}

// Watch calls Sync every interval until ctx is done.
func (l *Local) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.Sync(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("local storage sync failed", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Debug("picked up external storage changes", "changes", n)
			}
		}
	}
}
