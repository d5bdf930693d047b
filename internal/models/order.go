package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of states an order moves through.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// statusTransitions is the forward transition graph. Cancellation is allowed
// from every non-terminal state; DELIVERED and CANCELLED are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next follows the graph.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// OrderItem is a single line on an order. ProductID is a weak reference: the
// line records a price/quantity fact at order time, so the product may later
// be deleted from the catalog without invalidating it.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"-" gorm:"index;not null"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	ProductName string          `json:"product_name" gorm:"type:varchar(200)"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
}

// NewOrderItem freezes the product's current unit price into a line item.
// Catalog price changes after this point never touch the order.
func NewOrderItem(p *Product, quantity int) OrderItem {
	unit := p.Price.Round(2)
	return OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   unit,
		Subtotal:    unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Order represents a customer order. Items are owned exclusively by the
// order and are created once, at assembly time; TotalAmount is frozen at
// creation and never recomputed.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	CustomerName    string          `json:"customer_name" gorm:"type:varchar(100);not null"`
	CustomerEmail   string          `json:"customer_email" gorm:"type:varchar(200)"`
	CustomerPhone   string          `json:"customer_phone" gorm:"type:varchar(20);not null"`
	CustomerAddress string          `json:"customer_address" gorm:"type:text;not null"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null"`
	OrderDate       time.Time       `json:"order_date" gorm:"not null;<-:create"`
	Notes           string          `json:"notes" gorm:"type:text"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
