package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/memstore"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
)

func seed(t *testing.T) (*memstore.Store, *users.User, *categories.Category, *products.Product) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	user, err := store.Users().Create(ctx, users.NewUser{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	category, err := store.Categories().Create(ctx, categories.Input{Name: "Mugs"})
	require.NoError(t, err)
	product, err := store.Products().Create(ctx, products.Record{Name: "Blue mug", Price: 9.5, Quantity: 3, CategoryID: category.ID})
	require.NoError(t, err)
	return store, user, category, product
}

func TestStatusesSeeded(t *testing.T) {
	store := memstore.New()
	statuses, err := store.Orders().Statuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, len(memstore.DefaultStatuses))

	def, err := store.Orders().DefaultStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pending", def.Label)
}

func TestProductDeleteKeepsOrderItems(t *testing.T) {
	ctx := context.Background()
	store, user, _, product := seed(t)

	order, err := store.Orders().Create(ctx, orders.Record{UserID: user.ID, Total: 19, StatusID: 1})
	require.NoError(t, err)
	_, err = store.Orders().AddItem(ctx, order.ID, product.ID, 2, 9.5)
	require.NoError(t, err)

	require.NoError(t, store.Products().Delete(ctx, product.ID))

	loaded, err := store.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Nil(t, loaded.Items[0].ProductID)
	assert.Nil(t, loaded.Items[0].Product)
}

func TestCategoryDeleteRejectedWhileInUse(t *testing.T) {
	ctx := context.Background()
	store, _, category, product := seed(t)

	err := store.Categories().Delete(ctx, category.ID)
	require.ErrorIs(t, err, categories.ErrInUse)

	require.NoError(t, store.Products().Delete(ctx, product.ID))
	require.NoError(t, store.Categories().Delete(ctx, category.ID))
	require.ErrorIs(t, store.Categories().Delete(ctx, category.ID), shared.ErrNotFound)
}

func TestUserDeleteCascadesOrders(t *testing.T) {
	ctx := context.Background()
	store, user, _, _ := seed(t)

	order, err := store.Orders().Create(ctx, orders.Record{UserID: user.ID, Total: 5, StatusID: 1})
	require.NoError(t, err)

	require.NoError(t, store.Users().Delete(ctx, user.ID))
	_, err = store.Orders().Get(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListsAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _, category, first := seed(t)
	second, err := store.Products().Create(ctx, products.Record{Name: "Red mug", Price: 4, Quantity: 0, CategoryID: category.ID})
	require.NoError(t, err)

	list, err := store.Products().List(ctx, products.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "Mugs", list[0].Category.Name)

	inStock, err := store.Products().List(ctx, products.ListFilter{InStock: true})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, first.ID, inStock[0].ID)

	found, err := store.Products().List(ctx, products.ListFilter{Search: "RED"})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	store, _, _, _ := seed(t)
	_, err := store.Users().Create(context.Background(), users.NewUser{Name: "Other", Email: "ADA@example.com"})
	require.ErrorIs(t, err, shared.ErrConflict)
}
