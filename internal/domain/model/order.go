package model

import "time"

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderPaid     OrderStatus = "PAID"
	OrderRejected OrderStatus = "REJECTED"
)

// Order records a store purchase. Created PENDING when the customer taps buy;
// marked PAID by the payment notice from the messaging platform.
type Order struct {
	ID        string
	UserID    string
	ProductID string
	Status    OrderStatus
	Stars     int64 // price charged, in stars, at purchase time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrder(id, userID, productID string, stars int64) *Order {
	now := time.Now()
	return &Order{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Status:    OrderPending,
		Stars:     stars,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
