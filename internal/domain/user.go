package domain

import "time"

// User описывает учётную запись сотрудника.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt
	Role         string
	Age          string
	Gender       string
	Date         time.Time
	Shift        string
	Image        *Image
}

func NewUser(username, passwordHash, role string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
