package categories

import "time"

// Category groups products.
type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ProductsCount int       `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Summary is the projection embedded in products.
type Summary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductSummary lists a product on the category page.
type ProductSummary struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Input carries validated category fields.
type Input struct {
	Name string
}
