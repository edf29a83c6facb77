package users

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Account is a principal allowed to log in.
type Account struct {
	Username     string
	PasswordHash string
	Roles        []string
}

// NewAccount builds an account from configuration. A plaintext password is
// hashed; an existing bcrypt hash is used as is.
func NewAccount(username, password, passwordHash string, roles []string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Account{}, errors.New("username cannot be empty")
	}

	hash := strings.TrimSpace(passwordHash)
	if hash == "" {
		if password == "" {
			return Account{}, errors.New("account " + username + " has no password")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Account{}, err
		}
		hash = string(generated)
	} else if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return Account{}, errors.New("account " + username + " has an invalid password hash")
	}

	return Account{
		Username:     username,
		PasswordHash: hash,
		Roles:        append([]string{}, roles...),
	}, nil
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type Profile struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}
