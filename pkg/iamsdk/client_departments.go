package iamsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Department CRUD, relation listings, and unauthenticated search.

// ListDepartments fetches one page of departments.
func (c *Client) ListDepartments(ctx context.Context, opts ListOptions) (*Page[Department], error) {
	var page Page[Department]
	err := c.doJSON(ctx, http.MethodGet, listPath("/departments", opts), nil, &page, requestOpts{
		name:     "list_departments",
		fallback: "failed to list departments",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDepartment fetches a single department by ID.
func (c *Client) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	var dept Department
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/departments/%d", id), nil, &dept, requestOpts{
		name:     "get_department",
		fallback: "failed to get department",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// CreateDepartment creates a department and returns the created record.
func (c *Client) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*Department, error) {
	var dept Department
	err := c.doJSON(ctx, http.MethodPost, "/departments", req, &dept, requestOpts{
		name:     "create_department",
		fallback: "failed to create department",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// UpdateDepartment updates a department and returns the updated record.
func (c *Client) UpdateDepartment(ctx context.Context, id int64, req UpdateDepartmentRequest) (*Department, error) {
	var dept Department
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/departments/%d", id), req, &dept, requestOpts{
		name:     "update_department",
		fallback: "failed to update department",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// DeleteDepartment deletes a department by ID.
func (c *Client) DeleteDepartment(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/departments/%d", id), nil, nil, requestOpts{
		name:     "delete_department",
		fallback: "failed to delete department",
		token:    c.Token(),
	})
}

// DepartmentUsers fetches one page of the users in a department.
func (c *Client) DepartmentUsers(ctx context.Context, id int64, opts ListOptions) (*Page[User], error) {
	var page Page[User]
	err := c.doJSON(ctx, http.MethodGet, listPath(fmt.Sprintf("/departments/%d/users", id), opts), nil, &page, requestOpts{
		name:     "department_users",
		fallback: "failed to list department users",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// DepartmentPositions fetches one page of the positions in a department.
func (c *Client) DepartmentPositions(ctx context.Context, id int64, opts ListOptions) (*Page[Position], error) {
	var page Page[Position]
	err := c.doJSON(ctx, http.MethodGet, listPath(fmt.Sprintf("/departments/%d/positions", id), opts), nil, &page, requestOpts{
		name:     "department_positions",
		fallback: "failed to list department positions",
		token:    c.Token(),
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchDepartments searches departments by name. This endpoint is public:
// no Authorization header is sent.
func (c *Client) SearchDepartments(ctx context.Context, query string) ([]Department, error) {
	var payload struct {
		Data []Department `json:"data"`
	}
	path := "/departments/search?" + url.Values{"q": {query}}.Encode()
	err := c.doJSON(ctx, http.MethodGet, path, nil, &payload, requestOpts{
		name:     "search_departments",
		fallback: "failed to search departments",
	})
	if err != nil {
		return nil, err
	}
	return payload.Data, nil
}
