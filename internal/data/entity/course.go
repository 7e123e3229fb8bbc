package entity

type Course struct {
	Base
	Title  string `db:"title"`
	Price  int64  `db:"price"`
	Period int    `db:"period"`
	Active bool   `db:"active"`
}
