package models

import "time"

// User represents an account entity used for authentication and authorization.
// Accounts are immutable after creation and are never deleted in-scope.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login identifier chosen at registration.
	Username string `json:"username"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// It MUST never be a plaintext value and is never exposed via JSON.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
