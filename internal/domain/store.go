package domain

import "time"

// Product is a store item.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderStatus enumerates order states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a checkout capture of a user's cart.
type Order struct {
	ID         string
	UserID     string
	Status     OrderStatus
	TotalCents int64
	Items      []OrderItem
	CreatedAt  time.Time
}

// OrderItem is one product line inside an order, priced at checkout time.
type OrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	Name       string
	PriceCents int64
	Quantity   int
}

// CartItem is a product/quantity pair held in the cart store prior to
// checkout.
type CartItem struct {
	ProductID string
	Quantity  int
}
