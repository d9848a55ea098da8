package quote

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/erazemk/storefront/internal/cart"
)

// RequestItem is one product in a quote request.
type RequestItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Message   string `json:"message,omitempty"`
}

// Request is the body of a quote submission.
type Request struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Items   []RequestItem `json:"items"`
	Message string        `json:"message,omitempty"`
}

// ValidationError is a form-level problem with a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RequestFromCart builds a request for the lines currently in the cart.
func RequestFromCart(name, email, message string, lines []cart.LineItem) Request {
	req := Request{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}
	for _, l := range lines {
		req.Items = append(req.Items, RequestItem{
			ProductID: l.ID,
			Quantity:  l.Quantity,
			Message:   l.Message,
		})
	}
	return req
}

// Validate checks the request before it is sent.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "full name is required"}
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Message: "add items to your quote first"}
	}
	for _, item := range r.Items {
		if item.ProductID == "" {
			return &ValidationError{Field: "items", Message: "item without product"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: "items", Message: fmt.Sprintf("quantity for %s must be at least 1", item.ProductID)}
		}
	}
	return nil
}

// ValidateEmail accepts a bare address such as "name@example.com".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email address is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return &ValidationError{Field: "email", Message: "enter a valid email address"}
	}
	return nil
}
