package orders

// CreateOrderRequest lists the only fields a client may set when creating an order.
type CreateOrderRequest struct {
	UserID string `form:"user_id" json:"user_id" validate:"required"`
	Total  string `form:"total" json:"total" validate:"required,numeric,minnum=0,maxnum=9999999999.99"`
}

// UpdateOrderRequest lists the editable fields of an order.
type UpdateOrderRequest struct {
	UserID string `form:"user_id" json:"user_id" validate:"required"`
	Total  string `form:"total" json:"total" validate:"required,numeric,minnum=0,maxnum=9999999999.99"`
}

// UpdateStatusRequest moves an order to another status.
type UpdateStatusRequest struct {
	StatusID string `form:"status_id" json:"status_id" validate:"required"`
}
