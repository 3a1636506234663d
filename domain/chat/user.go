package chat

// User is a registered account. The password is stored only as a bcrypt
// hash, never in plaintext.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
