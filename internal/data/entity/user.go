package entity

type User struct {
	Base
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	Active       bool   `db:"active"`
}
