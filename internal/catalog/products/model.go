package products

import (
	"time"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/storage"
)

// ImageArea is the storage area holding product images.
const ImageArea = "products_images"

// Product is a catalog item.
type Product struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Price       float64             `json:"price"`
	Quantity    int                 `json:"quantity"`
	SKU         *string             `json:"sku"`
	Image       *string             `json:"image"`
	ImageURL    string              `json:"image_url,omitempty"`
	CategoryID  int64               `json:"category_id"`
	Category    *categories.Summary `json:"category,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Record is the persisted field set of a product.
type Record struct {
	Name        string
	Description *string
	Price       float64
	Quantity    int
	SKU         *string
	Image       *string
	CategoryID  int64
}

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID int64
	Search     string
	InStock    bool
}

// Form is the raw product form. Image is read from the multipart body.
type Form struct {
	Name        string          `form:"name" json:"name" validate:"required,max=255"`
	Description string          `form:"description" json:"description"`
	Price       string          `form:"price" json:"price" validate:"required,numeric,minnum=0,maxnum=9999999999.99"`
	Quantity    string          `form:"quantity" json:"quantity" validate:"required,numeric,minnum=0,maxnum=2147483647,whole"`
	SKU         string          `form:"sku" json:"sku" validate:"omitempty,max=255"`
	CategoryID  string          `form:"category_id" json:"category_id" validate:"required"`
	Image       *storage.Upload `form:"-" json:"-" validate:"-"`
}
