package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/orders"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueMail carries customer notifications.
	QueueMail = "mail"

	// TaskOrderStatusChanged mails the customer after a status transition.
	TaskOrderStatusChanged = "orders:status_changed"
	// TaskImageSweep removes stored product images no product references.
	TaskImageSweep = "catalog:image_sweep"
)

// OrderStatusChangedPayload is captured when the status changes so the mail reflects that moment.
type OrderStatusChangedPayload struct {
	OrderID   int64     `json:"order_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	ChangedAt time.Time `json:"changed_at"`
}

// ImageSweepPayload tunes the orphan sweep.
type ImageSweepPayload struct {
	// MinAge protects files uploaded by requests still in flight.
	MinAge time.Duration `json:"min_age"`
	DryRun bool          `json:"dry_run"`
}

// PayloadFromOrder builds the notification payload. Orders without a user yield an error.
func PayloadFromOrder(order *orders.Order, now time.Time) (OrderStatusChangedPayload, error) {
	if order == nil || order.User == nil || order.User.Email == "" {
		return OrderStatusChangedPayload{}, fmt.Errorf("jobs: order has no customer e-mail")
	}
	status := ""
	if order.Status != nil {
		status = order.Status.Label
	}
	return OrderStatusChangedPayload{
		OrderID:   order.ID,
		Email:     order.User.Email,
		Name:      order.User.Name,
		Status:    status,
		Total:     order.Total,
		ChangedAt: now.UTC(),
	}, nil
}

// NewOrderStatusChangedTask constructs the notification task.
func NewOrderStatusChangedTask(payload OrderStatusChangedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusChanged, data, asynq.Queue(QueueMail), asynq.MaxRetry(5)), nil
}

// NewImageSweepTask constructs the sweep task.
func NewImageSweepTask(payload ImageSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImageSweep, data, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}
