package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, success bool, data any, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]any{"success": success, "data": data, "message": message})
	require.NoError(t, err)
}

func setupTestServer(t *testing.T, token string, register func(mux *http.ServeMux)) *Client {
	t.Helper()
	mux := http.NewServeMux()
	register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return New(server.URL+"/api/", staticToken(token))
}

func TestProductsAnonymous(t *testing.T) {
	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			writeEnvelope(t, w, http.StatusOK, true, []model.Product{
				{ID: "p1", Title: "Hammer Mill", ImageURLs: []string{"https://cdn/p1.jpg"}, Category: "3", Available: true},
			}, "")
		})
	})

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Hammer Mill", products[0].Title)
	assert.Equal(t, "https://cdn/p1.jpg", products[0].Thumbnail())
}

func TestBearerTokenAttached(t *testing.T) {
	client := setupTestServer(t, "tok-123", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /api/quotes", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			writeEnvelope(t, w, http.StatusOK, true, []map[string]any{
				{"id": "q1", "tracking_code": "QT-1", "status": "pending", "vat_rate": "15"},
				{"id": "q2", "tracking_code": "QT-2", "status": "quoted"},
			}, "")
		})
	})

	q, err := client.FindQuote(context.Background(), "q2")
	require.NoError(t, err)
	assert.Equal(t, "QT-2", q.TrackingCode)

	_, err = client.FindQuote(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServerReportedFailure(t *testing.T) {
	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /api/quotes/{code}", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, http.StatusOK, false, nil, "Quote not found")
		})
	})

	_, err := client.TrackQuote(context.Background(), "QT-NOPE")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Quote not found", apiErr.Message)
	assert.Equal(t, "Quote not found", Message(err))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestUnauthorized(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := setupTestServer(t, "expired", func(mux *http.ServeMux) {
			mux.HandleFunc("GET /api/quotes", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", status)
			})
		})

		_, err := client.Quotes(context.Background())
		assert.True(t, errors.Is(err, ErrUnauthorized), "status %d", status)
	}
}

func TestTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url, nil).Products(context.Background())
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, Message(err), "Could not reach the server")

	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>gateway</html>")
		})
	})
	_, err = client.Products(context.Background())
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestNonJSONErrorStatus(t *testing.T) {
	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})
	})

	_, err := client.Products(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestSubmitQuote(t *testing.T) {
	var got quote.Request
	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /api/quotes", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeEnvelope(t, w, http.StatusCreated, true, map[string]string{"trackingCode": "QT-42"}, "")
		})
	})

	req := quote.Request{
		Name:  "Thandi",
		Email: "thandi@example.com",
		Items: []quote.RequestItem{{ProductID: "p1", Quantity: 3, Message: "red"}},
	}
	sub, err := client.SubmitQuote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "QT-42", sub.TrackingCode)
	assert.Equal(t, req, got)

	_, err = client.SubmitQuote(context.Background(), quote.Request{Name: "x", Email: "bad"})
	var verr *quote.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestSubmitQuoteWithVerification(t *testing.T) {
	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /api/quotes", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, http.StatusOK, true, map[string]any{"verificationRequired": true, "quoteId": "q9"}, "")
		})
		mux.HandleFunc("POST /api/quotes/{id}/verify", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if r.PathValue("id") != "q9" || body["code"] != "123456" {
				writeEnvelope(t, w, http.StatusBadRequest, false, nil, "Invalid verification code")
				return
			}
			writeEnvelope(t, w, http.StatusOK, true, map[string]string{"trackingCode": "QT-9"}, "")
		})
	})

	ctx := context.Background()
	sub, err := client.SubmitQuote(ctx, quote.Request{
		Name: "A", Email: "a@example.com", Items: []quote.RequestItem{{ProductID: "p", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, sub.VerificationRequired)
	assert.Empty(t, sub.TrackingCode)

	_, err = client.VerifyQuote(ctx, "q9", "000000")
	assert.Equal(t, "Invalid verification code", Message(err))

	sub, err = client.VerifyQuote(ctx, "q9", "123456")
	require.NoError(t, err)
	assert.Equal(t, "QT-9", sub.TrackingCode)
}

func TestAdminQuoteUpdates(t *testing.T) {
	var pricing, issue, status map[string]any
	client := setupTestServer(t, "tok", func(mux *http.ServeMux) {
		mux.HandleFunc("PUT /api/quotes/{id}/pricing", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&pricing))
			writeEnvelope(t, w, http.StatusOK, true, nil, "")
		})
		mux.HandleFunc("PUT /api/quotes/{id}/issue", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&issue))
			writeEnvelope(t, w, http.StatusOK, true, nil, "")
		})
		mux.HandleFunc("PUT /api/quotes/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&status))
			writeEnvelope(t, w, http.StatusOK, true, nil, "")
		})
	})

	ctx := context.Background()
	lines := []PriceLine{{ID: "i1", UnitPrice: decimal.RequireFromString("100"), Quantity: 2}}

	require.NoError(t, client.UpdatePricing(ctx, "q1", lines))
	items := pricing["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"id": "i1", "unit_price": 100.0, "quantity": 2.0}, items[0])

	require.NoError(t, client.IssueQuote(ctx, "q1", nil))
	assert.NotContains(t, issue, "items")

	require.NoError(t, client.UpdateStatus(ctx, "q1", quote.StatusInProgress))
	assert.Equal(t, "in_progress", status["status"])
}

func TestProductWrites(t *testing.T) {
	client := setupTestServer(t, "tok", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
			var p model.Product
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Empty(t, p.ID)
			p.ID = "new-id"
			writeEnvelope(t, w, http.StatusCreated, true, p, "")
		})
		mux.HandleFunc("PUT /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			var p model.Product
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			writeEnvelope(t, w, http.StatusOK, true, p, "")
		})
		mux.HandleFunc("DELETE /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, http.StatusOK, true, nil, "Product deleted")
		})
	})

	ctx := context.Background()
	created, err := client.CreateProduct(ctx, model.Product{Title: "Cable", Category: "4"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)

	created.ImageURLs = []string{"https://cdn/x.jpg"}
	updated, err := client.UpdateProduct(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/x.jpg"}, updated.ImageURLs)

	_, err = client.UpdateProduct(ctx, model.Product{Title: "no id"})
	assert.Error(t, err)

	require.NoError(t, client.DeleteProduct(ctx, "new-id"))
}

func TestLogin(t *testing.T) {
	client := setupTestServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret" {
				writeEnvelope(t, w, http.StatusUnauthorized, false, nil, "Invalid credentials")
				return
			}
			writeEnvelope(t, w, http.StatusOK, true, map[string]any{
				"token": "jwt-token",
				"admin": map[string]string{"id": "a1", "email": body["email"], "name": "Admin"},
			}, "")
		})
	})

	ctx := context.Background()
	res, err := client.Login(ctx, " admin@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", res.Token)
	assert.Equal(t, "admin@example.com", res.Admin.Email)

	_, err = client.Login(ctx, "admin@example.com", "wrong")
	assert.Equal(t, "Invalid credentials", Message(err))

	_, err = client.Login(ctx, "", "")
	assert.Error(t, err)
}
