// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"unicode/utf8"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 64
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// User is the display identity of a connection. Username stays empty
// until the connection joins a room with a display name.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

func NewUser(id UserID) *User {
	return &User{ID: id}
}

func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func (u *User) SetUsername(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.Username = username
	return nil
}
