package models

import "time"

// User is a registered identity, keyed by email.
// Password holds the bcrypt hash of the credential; it is empty for accounts
// created through the OAuth hand-off (no password login possible).
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
