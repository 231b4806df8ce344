package iamsdk

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// ============================================================================
// Entity Types
// ============================================================================

// User is an identity record owned by the remote service. The client only
// ever holds a read-only, possibly stale copy.
type User struct {
	// ID is the unique identifier for the user
	ID int64 `json:"id"`

	// Name is the user's display name
	Name string `json:"name"`

	// Email is the user's email address (may be empty for phone-only accounts)
	Email string `json:"email,omitempty"`

	// Phone is the user's phone number (may be empty for email-only accounts)
	Phone string `json:"phone,omitempty"`

	// Status is the account status (e.g., "active", "suspended")
	Status string `json:"status,omitempty"`

	// Roles are the roles assigned to this user, each possibly carrying
	// nested permissions
	Roles []Role `json:"roles,omitempty"`

	// Departments the user belongs to
	Departments []Department `json:"departments,omitempty"`

	// Positions the user holds
	Positions []Position `json:"positions,omitempty"`
}

// Role is a named group assigned to a user, carrying zero or more permissions.
type Role struct {
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Permission identifies a single capability by name.
//
// The remote API is inconsistent about how it encodes permissions: some
// responses carry bare strings ("users.create"), others carry objects
// ({"id": 3, "name": "users.create"}). Both shapes decode into Permission,
// so the union never leaks past the JSON boundary.
type Permission struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts either a bare string or an object with a name field.
func (p *Permission) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.Name)
	}

	type permission Permission // drop methods to avoid recursion
	var obj permission
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Permission(obj)
	return nil
}

// Department is an organisational unit users and positions belong to.
type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

// Position is a job position, optionally attached to a department.
type Position struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// ============================================================================
// Authentication Types
// ============================================================================

// Identity is a verified token's user/permission/role bundle. Permissions are
// reconciled: the response's flat list merged with permissions nested inside
// the user's roles, de-duplicated, ordered by first occurrence.
type Identity struct {
	User        *User    `json:"user"`
	Permissions []string `json:"permissions,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// AuthResult is a successful login response with reconciled permissions.
type AuthResult struct {
	// Token is the session token issued by the service
	Token string

	// TokenType is typically "Bearer"
	TokenType string

	// ExpiresIn is the token lifetime in seconds (0 if the service did not say)
	ExpiresIn int

	Identity
}

// TokenRefresh is the result of a token refresh. Changed reports whether the
// service actually issued a different token, letting the caller decide how to
// react instead of relying on a hidden callback.
type TokenRefresh struct {
	Token     string
	ExpiresIn int
	Changed   bool
}

// LoginRequest carries email/password credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PhoneLoginRequest carries phone/OTP credentials.
type PhoneLoginRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// loginPayload is the wire shape of login responses.
type loginPayload struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *User        `json:"user"`
	Permissions []Permission `json:"permissions"`
}

// verifyPayload is the wire shape of GET /auth/me responses.
type verifyPayload struct {
	User        *User        `json:"user"`
	Permissions []Permission `json:"permissions"`
}

// ============================================================================
// Entity CRUD Types
// ============================================================================

// Page is one page of a paginated collection. Pages are never cached
// client-side; every fetch is a fresh request.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// ListOptions holds pagination parameters for list operations.
// Zero values are omitted and the service applies its defaults.
type ListOptions struct {
	Page    int
	PerPage int
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	return q
}

// CreateUserRequest creates a new user.
type CreateUserRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Password      string  `json:"password,omitempty"`
	Status        string  `json:"status,omitempty"`
	RoleIDs       []int64 `json:"role_ids,omitempty"`
	DepartmentIDs []int64 `json:"department_ids,omitempty"`
	PositionIDs   []int64 `json:"position_ids,omitempty"`
}

// UpdateUserRequest updates an existing user. Empty fields are omitted from
// the request body and left unchanged by the service.
type UpdateUserRequest struct {
	Name          string  `json:"name,omitempty"`
	Email         string  `json:"email,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Password      string  `json:"password,omitempty"`
	Status        string  `json:"status,omitempty"`
	RoleIDs       []int64 `json:"role_ids,omitempty"`
	DepartmentIDs []int64 `json:"department_ids,omitempty"`
	PositionIDs   []int64 `json:"position_ids,omitempty"`
}

// CreateDepartmentRequest creates a new department.
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

// UpdateDepartmentRequest updates an existing department.
type UpdateDepartmentRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

// CreatePositionRequest creates a new position.
type CreatePositionRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// UpdatePositionRequest updates an existing position.
type UpdatePositionRequest struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}
