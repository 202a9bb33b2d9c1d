package products_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/memstore"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/validation"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type fixture struct {
	store    *memstore.Store
	disk     *storage.Disk
	service  *products.Service
	category *categories.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	disk, err := storage.NewDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	category, err := store.Categories().Create(context.Background(), categories.Input{Name: "Mugs"})
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		store:    store,
		disk:     disk,
		service:  products.NewService(store.Products(), store.Categories(), disk, logger),
		category: category,
	}
}

func (f *fixture) form(name string) products.Form {
	return products.Form{
		Name:       name,
		Price:      "12.50",
		Quantity:   "4",
		CategoryID: formatID(f.category.ID),
	}
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	form := f.form("Blue mug")
	form.SKU = "  MUG-1 "
	form.Image = storage.NewUpload("mug.png", pngBytes)

	product, err := f.service.Create(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "Blue mug", product.Name)
	assert.Equal(t, 12.5, product.Price)
	assert.Equal(t, 4, product.Quantity)
	require.NotNil(t, product.SKU)
	assert.Equal(t, "MUG-1", *product.SKU)
	assert.Nil(t, product.Description)
	require.NotNil(t, product.Image)
	assert.True(t, f.disk.Exists(*product.Image))
	assert.Equal(t, "/storage/"+*product.Image, product.ImageURL)
}

func TestCreateWithUnknownCategoryStoresNothing(t *testing.T) {
	f := newFixture(t)
	form := f.form("Ghost")
	form.CategoryID = "999"
	form.Image = storage.NewUpload("mug.png", pngBytes)

	_, err := f.service.Create(context.Background(), form)
	require.ErrorIs(t, err, shared.ErrValidation)
	errs := validation.FromError(err)
	assert.Equal(t, "The selected category id is invalid.", errs["category_id"])

	list, err := f.service.List(context.Background(), products.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	files, err := f.disk.List(context.Background(), products.ImageArea)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreateValidationMessages(t *testing.T) {
	f := newFixture(t)
	form := products.Form{Price: "-1", Quantity: "1.5", CategoryID: formatID(f.category.ID)}
	form.Image = storage.NewUpload("notes.txt", []byte("plain text body"))

	_, err := f.service.Create(context.Background(), form)
	errs := validation.FromError(err)
	require.NotNil(t, errs)
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The price field must be at least 0.", errs["price"])
	assert.Equal(t, "The quantity field must be an integer.", errs["quantity"])
	assert.Equal(t, "The image field must be an image.", errs["image"])
}

func TestCreateRejectsOutOfRangeNumbers(t *testing.T) {
	huge := strings.Repeat("9", 400)
	cases := []struct {
		name     string
		price    string
		quantity string
		field    string
		want     string
	}{
		{"huge negative price", "-" + huge, "1", "price", "The price field must be at least 0."},
		{"huge price", huge, "1", "price", "The price field must not be greater than 9999999999.99."},
		{"price above column precision", "10000000000", "1", "price", "The price field must not be greater than 9999999999.99."},
		{"huge negative quantity", "1", "-" + huge, "quantity", "The quantity field must be at least 0."},
		{"quantity overflowing int64", "1", "99999999999999999999", "quantity", "The quantity field must not be greater than 2147483647."},
		{"quantity above integer column", "1", "2147483648", "quantity", "The quantity field must not be greater than 2147483647."},
		{"fractional quantity", "1", "1.5", "quantity", "The quantity field must be an integer."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			form := f.form("Mug")
			form.Price = tc.price
			form.Quantity = tc.quantity

			_, err := f.service.Create(context.Background(), form)
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, tc.want, validation.FromError(err)[tc.field])

			list, err := f.service.List(context.Background(), products.ListFilter{})
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCreateAcceptsColumnLimits(t *testing.T) {
	f := newFixture(t)
	form := f.form("Crate")
	form.Price = "9999999999.99"
	form.Quantity = "2147483647"

	product, err := f.service.Create(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, 9999999999.99, product.Price)
	assert.Equal(t, 2147483647, product.Quantity)
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.form("Blue mug")
	form.Image = storage.NewUpload("mug.png", pngBytes)
	product, err := f.service.Create(ctx, form)
	require.NoError(t, err)
	old := *product.Image

	update := f.form("Blue mug v2")
	update.Image = storage.NewUpload("mug2.png", pngBytes)
	require.NoError(t, f.service.Update(ctx, product.ID, update))

	updated, err := f.service.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue mug v2", updated.Name)
	require.NotNil(t, updated.Image)
	assert.NotEqual(t, old, *updated.Image)
	assert.False(t, f.disk.Exists(old))
	assert.True(t, f.disk.Exists(*updated.Image))
}

func TestUpdateWithoutImageKeepsCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.form("Blue mug")
	form.Image = storage.NewUpload("mug.png", pngBytes)
	product, err := f.service.Create(ctx, form)
	require.NoError(t, err)

	require.NoError(t, f.service.Update(ctx, product.ID, f.form("Renamed")))

	updated, err := f.service.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, *product.Image, *updated.Image)
	assert.True(t, f.disk.Exists(*updated.Image))
}

func TestUpdateUnknownProduct(t *testing.T) {
	f := newFixture(t)
	err := f.service.Update(context.Background(), 42, f.form("Nope"))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRemovesProductAndImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form := f.form("Blue mug")
	form.Image = storage.NewUpload("mug.png", pngBytes)
	product, err := f.service.Create(ctx, form)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, product.ID))

	list, err := f.service.List(ctx, products.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, f.disk.Exists(*product.Image))

	_, err = f.service.Get(ctx, product.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, f.service.Delete(ctx, product.ID), shared.ErrNotFound)
}
