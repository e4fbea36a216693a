package rest

import (
	"context"
	"net/http"

	"github.com/hylla/tavla/internal/domain"
)

// SignUp registers a user.
func (c *Client) SignUp(ctx context.Context, name, login, password string) (domain.User, error) {
	var out userDTO
	req := call{
		method: http.MethodPost,
		path:   []string{"signup"},
		body:   credentials{Name: name, Login: login, Password: password},
		out:    &out,
		anon:   true,
	}
	if err := c.do(ctx, req); err != nil {
		return domain.User{}, err
	}
	return userResult(out)
}

// SignIn exchanges credentials for a token. An empty token means the
// service accepted the request without issuing one.
func (c *Client) SignIn(ctx context.Context, login, password string) (string, error) {
	var out tokenDTO
	req := call{
		method: http.MethodPost,
		path:   []string{"signin"},
		body:   credentials{Login: login, Password: password},
		out:    &out,
		anon:   true,
	}
	if err := c.do(ctx, req); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GetUser returns a user profile.
func (c *Client) GetUser(ctx context.Context, userID string) (domain.User, error) {
	var out userDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"users", userID}, out: &out}); err != nil {
		return domain.User{}, err
	}
	return userResult(out)
}

// UpdateUser rewrites a user profile.
func (c *Client) UpdateUser(ctx context.Context, userID, name, login, password string) (domain.User, error) {
	var out userDTO
	req := call{
		method: http.MethodPut,
		path:   []string{"users", userID},
		body:   credentials{Name: name, Login: login, Password: password},
		out:    &out,
	}
	if err := c.do(ctx, req); err != nil {
		return domain.User{}, err
	}
	return userResult(out)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"users", userID}})
}

func userResult(out userDTO) (domain.User, error) {
	user, err := out.toDomain()
	if err != nil {
		return domain.User{}, invalidPayload(err)
	}
	return user, nil
}
