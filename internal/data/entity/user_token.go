package entity

import (
	"time"
)

// UserToken is one issued bearer credential. Rows are never deleted:
// revocation, expiry and cap eviction all just flip active to false,
// and an inactive row is terminal.
type UserToken struct {
	Base
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ValidTill time.Time `db:"valid_till"`
	Active    bool      `db:"active"`
	IP        *string   `db:"ip"`
}
