package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Repository defines persistence operations for products.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, rec Record) (*Product, error)
	Update(ctx context.Context, id int64, rec Record) error
	Delete(ctx context.Context, id int64) error
	ImagePaths(ctx context.Context) ([]string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{db: q}
}

// SelectProducts is the column list shared by every product read.
func SelectProducts() sq.SelectBuilder {
	return db.Builder.
		Select("p.id", "p.name", "p.description", "p.price::float8", "p.quantity", "p.sku", "p.image",
			"p.category_id", "c.name", "p.created_at", "p.updated_at").
		From("products p").
		Join("categories c ON c.id = p.category_id")
}

// ScanProduct scans a row produced by SelectProducts.
func ScanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var categoryName string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.SKU, &p.Image,
		&p.CategoryID, &categoryName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Category = &categories.Summary{ID: p.CategoryID, Name: categoryName}
	return &p, nil
}

// List returns products joined with their category, newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := SelectProducts().OrderBy("p.created_at DESC", "p.id DESC")
	if filter.CategoryID > 0 {
		query = query.Where(sq.Eq{"p.category_id": filter.CategoryID})
	}
	if filter.InStock {
		query = query.Where(sq.Gt{"p.quantity": 0})
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + term + "%"
		query = query.Where(sq.Or{sq.ILike{"p.name": like}, sq.ILike{"p.sku": like}})
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("products: build list: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("products: scan: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products: list rows: %w", err)
	}
	return out, nil
}

// Get loads a product with its category.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Product, error) {
	sql, args, err := SelectProducts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("products: build get: %w", err)
	}
	p, err := ScanProduct(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("products: get %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("products: get %d: %w", id, err)
	}
	return p, nil
}

// Create inserts a product.
func (r *PGRepository) Create(ctx context.Context, rec Record) (*Product, error) {
	sql, args, err := db.Builder.Insert("products").
		SetMap(recordMap(rec)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("products: build insert: %w", err)
	}
	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("products: insert: %w", err)
	}
	return r.Get(ctx, id)
}

// Update overwrites every persisted field.
func (r *PGRepository) Update(ctx context.Context, id int64, rec Record) error {
	fields := recordMap(rec)
	fields["updated_at"] = time.Now().UTC()
	sql, args, err := db.Builder.Update("products").
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("products: build update: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("products: update %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Delete removes a product. Order items keep their row with a null product.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("products: delete %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// ImagePaths returns every stored image path still referenced by a product.
func (r *PGRepository) ImagePaths(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT image FROM products WHERE image IS NOT NULL AND image <> ''`)
	if err != nil {
		return nil, fmt.Errorf("products: image paths: %w", err)
	}
	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("products: collect image paths: %w", err)
	}
	return paths, nil
}

func recordMap(rec Record) map[string]any {
	return map[string]any{
		"name":        rec.Name,
		"description": rec.Description,
		"price":       rec.Price,
		"quantity":    rec.Quantity,
		"sku":         rec.SKU,
		"image":       rec.Image,
		"category_id": rec.CategoryID,
	}
}

var _ Repository = (*PGRepository)(nil)
