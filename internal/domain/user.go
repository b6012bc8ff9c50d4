package domain

import "time"

// User is a registered account. ID never changes after creation.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
