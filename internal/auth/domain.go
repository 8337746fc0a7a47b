package auth

// User is the single operator allowed into the dashboard.
type User struct {
	Username     string
	PasswordHash string
}

// Credentials is the configured username/password pair.
type Credentials struct {
	Username string
	Password string
}
