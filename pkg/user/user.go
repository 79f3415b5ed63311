package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserDataInvalid = errors.New("invalid user data")
	ErrUsernameTaken   = errors.New("username is already taken")
)

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Currency    string
}

const DefaultCurrency = "BRL"
