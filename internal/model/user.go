package model

// User is a registered account. The ID is the registry map key, so it is
// not serialized into the per-user JSON object.
//
// Password is stored exactly as submitted. Hashing is a known gap that needs
// an explicit decision before any production use.
type User struct {
	ID        string `json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}
