package auth

import "time"

// User represents a registered account. The email is normalized and unique;
// the password is only ever stored as a bcrypt hash.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
