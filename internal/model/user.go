package model

// Identity is an operator resolved against the external platform's user
// directory. No credentials are stored locally.
type Identity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
