package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the caller derived from a verified token. The Role carried here
// comes from the token claim and is never used for privilege decisions.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// User is a registered account. Email is the unique key.
type User struct {
	ID           string     `json:"_id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	PhotoURL     string     `json:"photoUrl,omitempty"`
	Wishlist     []MovieRef `json:"wishlist"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// IsAdmin reports whether the persisted role grants admin privileges.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasInWishlist reports whether a movie with the given id is already in the wishlist.
func (u *User) HasInWishlist(movieID string) bool {
	for _, m := range u.Wishlist {
		if m.ID == movieID {
			return true
		}
	}
	return false
}
