package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Repository defines persistence operations for categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, input Input) (*Category, error)
	Update(ctx context.Context, id int64, input Input) error
	Delete(ctx context.Context, id int64) error
	Products(ctx context.Context, id int64) ([]ProductSummary, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{db: q}
}

// List returns every category with its product count, ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]Category, error) {
	sql, args, err := db.Builder.
		Select("c.id", "c.name", "COUNT(p.id)", "c.created_at", "c.updated_at").
		From("categories c").
		LeftJoin("products p ON p.category_id = c.id").
		GroupBy("c.id").
		OrderBy("c.name", "c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("categories: build list: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("categories: list: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ProductsCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("categories: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("categories: list rows: %w", err)
	}
	return out, nil
}

// Get loads a category by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `SELECT c.id, c.name, (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id), c.created_at, c.updated_at
FROM categories c WHERE c.id = $1`, id).Scan(&c.ID, &c.Name, &c.ProductsCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("categories: get %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("categories: get %d: %w", id, err)
	}
	return &c, nil
}

// Exists reports whether id resolves to a category.
func (r *PGRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("categories: exists: %w", err)
	}
	return exists, nil
}

// Create inserts a category.
func (r *PGRepository) Create(ctx context.Context, input Input) (*Category, error) {
	c := Category{Name: input.Name}
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at, updated_at`, input.Name).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("categories: create: %w", err)
	}
	return &c, nil
}

// Update renames a category.
func (r *PGRepository) Update(ctx context.Context, id int64, input Input) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`, id, input.Name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("categories: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categories: update %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Delete removes a category. Products still referencing it surface as ErrInUse.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("categories: delete %d: %w", id, ErrInUse)
		}
		return fmt.Errorf("categories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categories: delete %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Products lists the products of a category by name.
func (r *PGRepository) Products(ctx context.Context, id int64) ([]ProductSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price::float8, quantity FROM products WHERE category_id = $1 ORDER BY name, id`, id)
	if err != nil {
		return nil, fmt.Errorf("categories: products: %w", err)
	}
	defer rows.Close()

	var out []ProductSummary
	for rows.Next() {
		var p ProductSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("categories: scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
