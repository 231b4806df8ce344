package iamsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Position CRUD, relation listing, and unauthenticated search.

// ListPositions fetches one page of positions.
func (c *Client) ListPositions(ctx context.Context, opts ListOptions) (*Page[Position], error) {
	var page Page[Position]
	err := c.doJSON(ctx, http.MethodGet, listPath("/positions", opts), nil, &page, requestOpts{
		name:     "list_positions",
		fallback: "failed to list positions",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPosition fetches a single position by ID.
func (c *Client) GetPosition(ctx context.Context, id int64) (*Position, error) {
	var pos Position
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/positions/%d", id), nil, &pos, requestOpts{
		name:     "get_position",
		fallback: "failed to get position",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// CreatePosition creates a position and returns the created record.
func (c *Client) CreatePosition(ctx context.Context, req CreatePositionRequest) (*Position, error) {
	var pos Position
	err := c.doJSON(ctx, http.MethodPost, "/positions", req, &pos, requestOpts{
		name:     "create_position",
		fallback: "failed to create position",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// UpdatePosition updates a position and returns the updated record.
func (c *Client) UpdatePosition(ctx context.Context, id int64, req UpdatePositionRequest) (*Position, error) {
	var pos Position
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/positions/%d", id), req, &pos, requestOpts{
		name:     "update_position",
		fallback: "failed to update position",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// DeletePosition deletes a position by ID.
func (c *Client) DeletePosition(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/positions/%d", id), nil, nil, requestOpts{
		name:     "delete_position",
		fallback: "failed to delete position",
		token:    c.Token(),
	})
}

// PositionUsers fetches one page of the users holding a position.
func (c *Client) PositionUsers(ctx context.Context, id int64, opts ListOptions) (*Page[User], error) {
	var page Page[User]
	err := c.doJSON(ctx, http.MethodGet, listPath(fmt.Sprintf("/positions/%d/users", id), opts), nil, &page, requestOpts{
		name:     "position_users",
		fallback: "failed to list position users",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchPositions searches positions by name. This endpoint is public: no
// Authorization header is sent.
func (c *Client) SearchPositions(ctx context.Context, query string) ([]Position, error) {
	var payload struct {
		Data []Position `json:"data"`
	}
	path := "/positions/search?" + url.Values{"q": {query}}.Encode()
	err := c.doJSON(ctx, http.MethodGet, path, nil, &payload, requestOpts{
		name:     "search_positions",
		fallback: "failed to search positions",
	})
	if err != nil {
		return nil, err
	}
	return payload.Data, nil
}
