package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// OrderStatusJob mails the customer when an order changes status.
type OrderStatusJob struct {
	mailer  Mailer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewOrderStatusJob wires the job.
func NewOrderStatusJob(mailer Mailer, metrics *observability.Metrics, logger *slog.Logger) *OrderStatusJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderStatusJob{mailer: mailer, metrics: metrics, logger: logger}
}

// Handle processes TaskOrderStatusChanged.
func (j *OrderStatusJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	started := time.Now()
	defer func() { j.metrics.ObserveJob(TaskOrderStatusChanged, started, err) }()

	var payload OrderStatusChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" {
		return fmt.Errorf("order %d has no recipient: %w", payload.OrderID, asynq.SkipRetry)
	}
	if err := j.mailer.Send(ctx, statusMessage(payload)); err != nil {
		return err
	}
	j.logger.Info("order status mail sent",
		slog.Int64("order_id", payload.OrderID),
		slog.String("status", payload.Status),
	)
	return nil
}

func statusMessage(p OrderStatusChangedPayload) Message {
	var body strings.Builder
	name := p.Name
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&body, "Hello %s,\n\n", name)
	fmt.Fprintf(&body, "Your order #%d is now %s.\n", p.OrderID, p.Status)
	fmt.Fprintf(&body, "Order total: %s\n\n", view.FormatMoney(p.Total))
	body.WriteString("Thank you for shopping with us.\n")
	return Message{
		To:      p.Email,
		Subject: fmt.Sprintf("Order #%d: %s", p.OrderID, p.Status),
		Body:    body.String(),
	}
}
