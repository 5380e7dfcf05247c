package catgraph

// User is the user payload of the identity service. The service keys users by
// _id; the public API exposes the same value as id.
type User struct {
	InternalID string `json:"_id,omitempty"`
	ID         string `json:"id,omitempty"`
	UserName   string `json:"user_name"`
	Email      string `json:"email"`
	Role       string `json:"role,omitempty"`
}

// Normalize copies the internal identifier into the public one.
func (u *User) Normalize() {
	if u.InternalID != "" {
		u.ID = u.InternalID
	}
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserInput is sent on register and update. Absent fields are left out of the body.
type UserInput struct {
	UserName *string `json:"user_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

// UserResponse is the envelope of register and update calls.
type UserResponse struct {
	Message string `json:"message"`
	Data    User   `json:"data"`
}

// ErrorResponse is what the identity service answers on failure.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
