package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/storefront/internal/broadcast"
	"github.com/erazemk/storefront/internal/db"
	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/store"
)

func newLocal(t *testing.T) *store.Local {
	t.Helper()
	hub := broadcast.NewHub()
	t.Cleanup(hub.Close)
	local, err := store.NewLocal(context.Background(), db.NewTestDB(t), hub)
	require.NoError(t, err)
	return local
}

func product(id string) model.Product {
	return model.Product{ID: id, Title: "Product " + id, ImageURLs: []string{"https://cdn/" + id + ".jpg"}}
}

func TestAddSameProductTwiceMerges(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, newLocal(t))

	c.AddItem(ctx, product("1"), 1)
	c.AddItem(ctx, product("1"), 1)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, c.Count())
}

func TestAddItemIncrementsBySelectedQuantity(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, newLocal(t))

	c.AddItem(ctx, product("1"), 3)
	c.AddItem(ctx, product("1"), 4)
	c.AddItem(ctx, product("2"), 0)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 7, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	a := New(ctx, newLocal(t))
	b := New(ctx, newLocal(t))

	for _, c := range []*Store{a, b} {
		c.AddItem(ctx, product("1"), 2)
		c.AddItem(ctx, product("2"), 1)
	}

	a.SetQuantity(ctx, "1", 0)
	b.RemoveItem(ctx, "1")

	assert.Equal(t, b.Items(), a.Items())
}

func TestUnknownIDsAreIgnored(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, newLocal(t))
	c.AddItem(ctx, product("1"), 1)

	c.RemoveItem(ctx, "nope")
	c.SetQuantity(ctx, "nope", 5)
	c.SetMessage(ctx, "nope", "hello")

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 1, c.Count())
}

func TestMutationsPersistAndRehydrate(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)

	c := New(ctx, local)
	c.AddItem(ctx, product("b"), 2)
	c.AddItem(ctx, product("a"), 1)
	c.SetMessage(ctx, "a", "need left-hand variant")

	reloaded := New(ctx, local)
	assert.Equal(t, c.Items(), reloaded.Items())
	assert.Equal(t, "b", reloaded.Items()[0].ID)

	c.Clear(ctx)
	raw, ok, err := local.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)
	assert.Zero(t, New(ctx, local).Len())
}

func TestUnreadableSavedCartIsDiscarded(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	require.NoError(t, local.Set(ctx, store.KeyCart, "{not json"))

	c := New(ctx, local)
	assert.Zero(t, c.Len())

	_, ok, err := local.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "bad entry should be removed")
}

func TestDecodeSanitizesSavedLines(t *testing.T) {
	items, err := Decode(`[{"id":"1","quantity":2},{"id":"2","quantity":0},{"id":"1","quantity":3}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items := []LineItem{
		{ID: "z", Title: "Zed", Quantity: 3, ImageURLs: []string{"u"}},
		{ID: "a", Title: "Ay", Quantity: 1, Message: "note"},
	}
	raw, err := Encode(items)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingStorage) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (failingStorage) Remove(context.Context, string) error      { return errors.New("disk gone") }

func TestStorageFailuresDegradeToInMemoryCart(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, failingStorage{})

	c.AddItem(ctx, product("1"), 2)
	assert.Equal(t, 2, c.Count())
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	c := New(ctx, newLocal(t))

	for step := 0; step < 500; step++ {
		id := fmt.Sprint(rng.Intn(6))
		switch rng.Intn(3) {
		case 0:
			c.AddItem(ctx, product(id), rng.Intn(4))
		case 1:
			c.RemoveItem(ctx, id)
		case 2:
			c.SetQuantity(ctx, id, rng.Intn(5)-1)
		}

		items := c.Items()
		seen := map[string]bool{}
		sum := 0
		for _, item := range items {
			require.GreaterOrEqual(t, item.Quantity, 1, "step %d", step)
			require.False(t, seen[item.ID], "duplicate id %s at step %d", item.ID, step)
			seen[item.ID] = true
			sum += item.Quantity
		}
		require.Equal(t, sum, c.Count(), "step %d", step)
	}
}
