package entity

import (
	"time"
)

type OrderStatus int16

const (
	OrderStatusPending OrderStatus = iota + 1
	OrderStatusPaid
	OrderStatusCancelled
	OrderStatusFailed
)

// Order is a purchase of timed course access. user_id and course_id are
// nullable so deleting a user or course keeps the ledger row. Cost is in the
// smallest currency unit. Period is months of access granted on payment.
type Order struct {
	Base
	UserID   *int64      `db:"user_id"`
	CourseID *int64      `db:"course_id"`
	Service  string      `db:"service"`
	Cost     int64       `db:"cost"`
	Status   OrderStatus `db:"status"`
	Period   int         `db:"period"`
	PaidAt   *time.Time  `db:"paid_at"`
	PaidTill *time.Time  `db:"paid_till"`
}
