package orders_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/memstore"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
	"github.com/odyssey-erp/backoffice/internal/validation"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []orders.Order
	err    error
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, order *orders.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, *order)
	return n.err
}

type fixture struct {
	store    *memstore.Store
	service  *orders.Service
	notifier *recordingNotifier
	user     *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	user, err := store.Users().Create(context.Background(), users.NewUser{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Verified: true})
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		store:    store,
		service:  orders.NewService(store.Orders(), store.Users(), notifier, logger),
		notifier: notifier,
		user:     user,
	}
}

func (f *fixture) userID() string {
	return strconv.FormatInt(f.user.ID, 10)
}

func TestCreateUsesDefaultStatus(t *testing.T) {
	f := newFixture(t)
	order, err := f.service.Create(context.Background(), orders.CreateOrderRequest{UserID: f.userID(), Total: "49.90"})
	require.NoError(t, err)
	assert.Equal(t, 49.9, order.Total)
	require.NotNil(t, order.Status)
	assert.Equal(t, "Pending", order.Status.Label)
	require.NotNil(t, order.User)
	assert.Equal(t, "Ada", order.User.Name)
}

func TestCreateRejectsNegativeTotal(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Create(context.Background(), orders.CreateOrderRequest{UserID: f.userID(), Total: "-1"})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "The total field must be at least 0.", validation.FromError(err)["total"])

	list, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRejectsOutOfRangeTotal(t *testing.T) {
	huge := strings.Repeat("9", 400)
	cases := map[string]string{
		"-" + huge:    "The total field must be at least 0.",
		huge:          "The total field must not be greater than 9999999999.99.",
		"10000000000": "The total field must not be greater than 9999999999.99.",
		"abc":         "The total field must be a number.",
	}
	for raw, want := range cases {
		f := newFixture(t)
		_, err := f.service.Create(context.Background(), orders.CreateOrderRequest{UserID: f.userID(), Total: raw})
		require.ErrorIs(t, err, shared.ErrValidation, raw)
		assert.Equal(t, want, validation.FromError(err)["total"], raw)

		list, err := f.service.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list, raw)
	}
}

func TestUpdateRejectsOverflowingTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.service.Create(ctx, orders.CreateOrderRequest{UserID: f.userID(), Total: "9999999999.99"})
	require.NoError(t, err)

	err = f.service.Update(ctx, order.ID, orders.UpdateOrderRequest{UserID: f.userID(), Total: "-" + strings.Repeat("9", 400)})
	require.ErrorIs(t, err, shared.ErrValidation)

	got, err := f.service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 9999999999.99, got.Total)
}

func TestCreateRejectsUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Create(context.Background(), orders.CreateOrderRequest{UserID: "999", Total: "1"})
	assert.Equal(t, "The selected user id is invalid.", validation.FromError(err)["user_id"])
}

func TestUpdateStatusNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.service.Create(ctx, orders.CreateOrderRequest{UserID: f.userID(), Total: "10"})
	require.NoError(t, err)

	require.NoError(t, f.service.UpdateStatus(ctx, order.ID, orders.UpdateStatusRequest{StatusID: "3"}))

	got, err := f.service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.StatusID)
	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, "Shipped", f.notifier.orders[0].Status.Label)
}

func TestUpdateStatusIgnoresNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("queue down")
	ctx := context.Background()
	order, err := f.service.Create(ctx, orders.CreateOrderRequest{UserID: f.userID(), Total: "10"})
	require.NoError(t, err)

	require.NoError(t, f.service.UpdateStatus(ctx, order.ID, orders.UpdateStatusRequest{StatusID: "2"}))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.service.Create(ctx, orders.CreateOrderRequest{UserID: f.userID(), Total: "10"})
	require.NoError(t, err)

	for _, raw := range []string{"", "0", "99", "abc"} {
		err := f.service.UpdateStatus(ctx, order.ID, orders.UpdateStatusRequest{StatusID: raw})
		require.ErrorIs(t, err, shared.ErrValidation, raw)
	}

	got, err := f.service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusID, got.StatusID)
	assert.Empty(t, f.notifier.orders)

	err = f.service.UpdateStatus(ctx, 404, orders.UpdateStatusRequest{StatusID: "2"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.service.Create(ctx, orders.CreateOrderRequest{UserID: f.userID(), Total: "10"})
	require.NoError(t, err)
	require.NoError(t, f.service.UpdateStatus(ctx, order.ID, orders.UpdateStatusRequest{StatusID: "4"}))

	require.NoError(t, f.service.Update(ctx, order.ID, orders.UpdateOrderRequest{UserID: f.userID(), Total: "12.5"}))

	got, err := f.service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Total)
	assert.Equal(t, int64(4), got.StatusID)
}
