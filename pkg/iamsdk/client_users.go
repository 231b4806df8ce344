package iamsdk

import (
	"context"
	"fmt"
	"net/http"
)

// User CRUD. Each method is a single request/response pass-through using the
// current token; failures are normalized with a method-specific fallback.

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*Page[User], error) {
	var page Page[User]
	err := c.doJSON(ctx, http.MethodGet, listPath("/users", opts), nil, &page, requestOpts{
		name:     "list_users",
		fallback: "failed to list users",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user, requestOpts{
		name:     "get_user",
		fallback: "failed to get user",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user and returns the created record.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPost, "/users", req, &user, requestOpts{
		name:     "create_user",
		fallback: "failed to create user",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user and returns the updated record.
func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &user, requestOpts{
		name:     "update_user",
		fallback: "failed to update user",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, requestOpts{
		name:     "delete_user",
		fallback: "failed to delete user",
		token:    c.Token(),
	})
}

// listPath appends pagination query parameters to path when set.
func listPath(path string, opts ListOptions) string {
	q := opts.query()
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
