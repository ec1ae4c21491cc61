package medsum

import "time"

// User is an account that can upload and read reports.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	APIKey       string    `json:"apiKey"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    string
	Email string
}

// Principal returns the identity view of u.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email}
}
