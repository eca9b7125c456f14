package domain

import "time"

// IdentityMetadata is the free-form data captured at sign-up and carried on
// every session. It is the display fallback when no profile row exists.
type IdentityMetadata struct {
	FirstName string `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" bson:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
}

// User models an account known to the auth subsystem.
type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	Metadata     IdentityMetadata `json:"user_metadata"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Identity returns the identity reference carried by sessions issued to u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Metadata: u.Metadata}
}

// AdminMembership is a row of the admin allow-list.
type AdminMembership struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// AuthorizedEmail is an address allowed to create an account.
type AuthorizedEmail struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
