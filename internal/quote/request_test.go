package quote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/storefront/internal/cart"
)

func TestRequestFromCart(t *testing.T) {
	req := RequestFromCart(" Sipho ", "sipho@example.com", "", []cart.LineItem{
		{ID: "p1", Quantity: 2, Message: "left-hand"},
		{ID: "p2", Quantity: 1},
	})

	require.NoError(t, req.Validate())
	assert.Equal(t, "Sipho", req.Name)
	assert.Equal(t, []RequestItem{
		{ProductID: "p1", Quantity: 2, Message: "left-hand"},
		{ProductID: "p2", Quantity: 1},
	}, req.Items)
}

func TestRequestValidation(t *testing.T) {
	valid := Request{Name: "A", Email: "a@example.com", Items: []RequestItem{{ProductID: "p", Quantity: 1}}}

	tests := []struct {
		name  string
		edit  func(*Request)
		field string
	}{
		{"missing name", func(r *Request) { r.Name = " " }, "name"},
		{"missing email", func(r *Request) { r.Email = "" }, "email"},
		{"malformed email", func(r *Request) { r.Email = "not-an-email" }, "email"},
		{"email without domain dot", func(r *Request) { r.Email = "a@localhost" }, "email"},
		{"display name email", func(r *Request) { r.Email = "A <a@example.com>" }, "email"},
		{"empty cart", func(r *Request) { r.Items = nil }, "items"},
		{"zero quantity", func(r *Request) { r.Items = []RequestItem{{ProductID: "p"}} }, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.edit(&r)

			var verr *ValidationError
			require.True(t, errors.As(r.Validate(), &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	require.NoError(t, valid.Validate())
}
