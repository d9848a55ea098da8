package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/erazemk/storefront/internal/model"
)

// LoginResult is a successful admin login.
type LoginResult struct {
	Token string      `json:"token"`
	Admin model.Admin `json:"admin"`
}

// Login exchanges admin credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, errors.New("email and password are required")
	}

	body := map[string]string{"email": email, "password": password}
	res, err := call[LoginResult](ctx, c, http.MethodPost, "/auth/login", body)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "logging in")
	}
	if res.Token == "" {
		return LoginResult{}, errors.New("logging in: response has no token")
	}
	return res, nil
}
