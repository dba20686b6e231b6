package domain

// RegisterClientInput carries the fields needed to register a new client.
// The secret arrives in plain text and is hashed before storage.
type RegisterClientInput struct {
	Name        string
	Secret      string
	Roles       []string
	Permissions []string
}

// LoginOutput is the result of a successful login.
type LoginOutput struct {
	Token string
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64
}
