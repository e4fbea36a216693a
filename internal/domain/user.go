package domain

import "strings"

// User is the signed-up account as the board service reports it.
type User struct {
	ID    string
	Name  string
	Login string
}

func NewUser(id, name, login string) (User, error) {
	id = strings.TrimSpace(id)
	login = strings.TrimSpace(login)
	if id == "" {
		return User{}, ErrInvalidID
	}
	if login == "" {
		return User{}, ErrInvalidLogin
	}
	return User{
		ID:    id,
		Name:  strings.TrimSpace(name),
		Login: login,
	}, nil
}
