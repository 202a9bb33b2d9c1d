package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/memstore"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/users"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func sampleOrder() *orders.Order {
	return &orders.Order{
		ID:     7,
		Total:  1234.5,
		User:   &users.Summary{ID: 1, Name: "Ada", Email: "ada@example.com"},
		Status: &orders.Status{ID: 3, Label: "Shipped"},
	}
}

func TestClientEnqueuesStatusNotification(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := NewClientWith(enq)

	require.NoError(t, client.OrderStatusChanged(context.Background(), sampleOrder()))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskOrderStatusChanged, enq.tasks[0].Type())

	var payload OrderStatusChangedPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, int64(7), payload.OrderID)
	assert.Equal(t, "ada@example.com", payload.Email)
	assert.Equal(t, "Shipped", payload.Status)

	err := client.OrderStatusChanged(context.Background(), &orders.Order{ID: 8})
	require.Error(t, err)
	assert.Len(t, enq.tasks, 1)
}

func TestOrderStatusJobSendsMail(t *testing.T) {
	mailer := &fakeMailer{}
	metrics := observability.NewMetrics()
	job := NewOrderStatusJob(mailer, metrics, discardLogger())

	payload, err := PayloadFromOrder(sampleOrder(), time.Now())
	require.NoError(t, err)
	task, err := NewOrderStatusChangedTask(payload)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Order #7: Shipped", msg.Subject)
	assert.Contains(t, msg.Body, "Your order #7 is now Shipped.")
	assert.Contains(t, msg.Body, "1,234.50")
}

func TestOrderStatusJobSkipsBadPayload(t *testing.T) {
	job := NewOrderStatusJob(&fakeMailer{}, nil, discardLogger())

	err := job.Handle(context.Background(), asynq.NewTask(TaskOrderStatusChanged, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskOrderStatusChanged, []byte(`{"order_id":1}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOrderStatusJobRetriesMailFailure(t *testing.T) {
	job := NewOrderStatusJob(&fakeMailer{err: errors.New("connection refused")}, nil, discardLogger())
	payload, err := PayloadFromOrder(sampleOrder(), time.Now())
	require.NoError(t, err)
	task, err := NewOrderStatusChangedTask(payload)
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSMTPMailerRendersMessage(t *testing.T) {
	mailer := NewSMTPMailer("127.0.0.1", 1025, "shop@example.com")
	var gotAddr string
	var gotTo []string
	var gotBody []byte
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, msg
		return nil
	}

	require.NoError(t, mailer.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hi", Body: "line one\nline two"}))
	assert.Equal(t, "127.0.0.1:1025", gotAddr)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, string(gotBody), "Subject: Hi\r\n")
	assert.Contains(t, string(gotBody), "line one\r\nline two")

	err := mailer.Send(context.Background(), Message{To: "a@example.com\r\nBcc: x@example.com", Subject: "Hi"})
	require.Error(t, err)
}

func TestImageSweepRemovesOrphans(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	store := memstore.New()
	category, err := store.Categories().Create(ctx, categories.Input{Name: "Mugs"})
	require.NoError(t, err)

	kept, err := disk.Store(ctx, products.ImageArea, storage.NewUpload("a.png", pngBytes))
	require.NoError(t, err)
	orphan, err := disk.Store(ctx, products.ImageArea, storage.NewUpload("b.png", pngBytes))
	require.NoError(t, err)
	_, err = store.Products().Create(ctx, products.Record{Name: "Mug", Price: 1, Quantity: 1, CategoryID: category.ID, Image: &kept})
	require.NoError(t, err)

	job := NewImageSweepJob(disk, store.Products(), nil, discardLogger())

	result, err := job.Sweep(ctx, ImageSweepPayload{MinAge: time.Hour})
	require.NoError(t, err)
	assert.Empty(t, result.Removed, "fresh uploads are kept")

	job.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	result, err = job.Sweep(ctx, ImageSweepPayload{MinAge: time.Hour, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, result.Removed)
	assert.True(t, disk.Exists(orphan))

	task, err := NewImageSweepTask(ImageSweepPayload{MinAge: time.Hour})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))
	assert.False(t, disk.Exists(orphan))
	assert.True(t, disk.Exists(kept))
}

type fakeInspector struct {
	queues []string
	info   map[string]*asynq.QueueInfo
	err    error
}

func (f *fakeInspector) Queues() ([]string, error) { return f.queues, f.err }

func (f *fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info[queue], nil
}

func TestHealthReportsQueues(t *testing.T) {
	inspector := &fakeInspector{
		queues: []string{QueueMail},
		info:   map[string]*asynq.QueueInfo{QueueMail: {Queue: QueueMail, Pending: 3, Archived: 1}},
	}
	handler := NewHandler(inspector, discardLogger())

	rec := httptest.NewRecorder()
	handler.health(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Queues []queueHealth `json:"queues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Queues, 2)
	assert.Equal(t, queueHealth{Queue: QueueDefault}, body.Queues[0])
	assert.Equal(t, queueHealth{Queue: QueueMail, Pending: 3, Failed: 1}, body.Queues[1])

	inspector.err = errors.New("redis down")
	rec = httptest.NewRecorder()
	handler.health(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(nil, nil).health(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"queue":"default"`))
}

func TestRedisClientOptCopiesCredentials(t *testing.T) {
	opt := RedisClientOpt(&redis.Options{Addr: "cache:6380", Username: "u", Password: "p", DB: 2})
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "u", opt.Username)
	assert.Equal(t, "p", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, "127.0.0.1:6379", RedisClientOpt(nil).Addr)
}
