package orders

import (
	"time"

	"github.com/odyssey-erp/backoffice/internal/users"
)

// Status is an order lifecycle label.
type Status struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// ProductRef is the product shown on an order line. Nil once the product is deleted.
type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Item is an order line.
type Item struct {
	ID        int64       `json:"id"`
	OrderID   int64       `json:"order_id"`
	ProductID *int64      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     float64     `json:"price"`
	Product   *ProductRef `json:"product"`
}

// Order is a customer order.
type Order struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Total     float64        `json:"total"`
	StatusID  int64          `json:"status_id"`
	User      *users.Summary `json:"user,omitempty"`
	Status    *Status        `json:"status,omitempty"`
	Items     []Item         `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Record is the persisted field set of a new order.
type Record struct {
	UserID   int64
	Total    float64
	StatusID int64
}

// Changes is the editable field set of an existing order.
type Changes struct {
	UserID int64
	Total  float64
}
