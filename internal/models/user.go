package models

import "time"

type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// User is the credential record. PasswordHash is the only form the password
// ever takes once persisted. RefreshTokens holds the raw signed refresh
// tokens currently honored for this user; a refresh token absent from the
// slice is revoked regardless of its signature. ResetTokenHash and
// ResetTokenExpires are either both set or both nil.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      []byte
	Role              Role
	RefreshTokens     []string
	ResetTokenHash    *string
	ResetTokenExpires *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
