package users

import "time"

// User is an account able to sign in to the back office and place orders.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Verified reports whether the e-mail address was confirmed.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// Summary is the public projection embedded in orders.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary projects u.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
}

// ProfileUpdate carries editable profile fields.
type ProfileUpdate struct {
	Name  string
	Email string
}
