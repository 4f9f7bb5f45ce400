package model

import "time"

// CredentialKind tags the representation stored for a user's credential.
type CredentialKind int

const (
	// CredentialUnset means neither a legacy password nor a hash+salt pair
	// is stored. The account must go through a password reset before it can
	// authenticate.
	CredentialUnset CredentialKind = iota
	// CredentialLegacy means only the plaintext password from the pre-hashing
	// era is stored.
	CredentialLegacy
	// CredentialModern means a PBKDF2 hash and salt are stored.
	CredentialModern
)

// Credential holds a user's stored secret in one of two mutually exclusive
// representations. Once the modern fields are populated the legacy field is
// never trusted again, regardless of its content.
type Credential struct {
	Legacy string `json:"-"`
	Hash   []byte `json:"-"`
	Salt   []byte `json:"-"`
}

func (c Credential) Kind() CredentialKind {
	if len(c.Hash) > 0 && len(c.Salt) > 0 {
		return CredentialModern
	}
	if c.Legacy != "" {
		return CredentialLegacy
	}
	return CredentialUnset
}

type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	Credential Credential `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PublicUser is the representation returned to API clients. It never carries
// credential material.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Username: u.Username}
}

type UserList struct {
	Users []PublicUser `json:"users"`
}

// LoginResult is what a successful authentication hands back to the caller.
type LoginResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
