package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
)

// Repository defines persistence operations for orders and statuses.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, rec Record) (*Order, error)
	Update(ctx context.Context, id int64, changes Changes) error
	UpdateStatus(ctx context.Context, id, statusID int64) error
	Delete(ctx context.Context, id int64) error
	Statuses(ctx context.Context) ([]Status, error)
	Status(ctx context.Context, id int64) (*Status, error)
	DefaultStatus(ctx context.Context) (*Status, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{db: q}
}

// SelectOrders joins orders with their user and status.
func SelectOrders() sq.SelectBuilder {
	return db.Builder.
		Select("o.id", "o.user_id", "o.total::float8", "o.status_id", "o.created_at", "o.updated_at",
			"u.name", "u.email", "s.label").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Join("order_statuses s ON s.id = o.status_id")
}

// ScanOrder reads a row produced by SelectOrders.
func ScanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var user users.Summary
	var status Status
	if err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.StatusID, &o.CreatedAt, &o.UpdatedAt,
		&user.Name, &user.Email, &status.Label); err != nil {
		return nil, err
	}
	user.ID = o.UserID
	status.ID = o.StatusID
	o.User = &user
	o.Status = &status
	o.Items = []Item{}
	return &o, nil
}

// List returns every order, newest first, with user, status and items.
func (r *PGRepository) List(ctx context.Context) ([]Order, error) {
	sql, args, err := SelectOrders().OrderBy("o.created_at DESC", "o.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("orders: build list: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := ScanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("orders: scan: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: list rows: %w", err)
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads one order with user, status and items.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Order, error) {
	sql, args, err := SelectOrders().Where(sq.Eq{"o.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("orders: build get: %w", err)
	}
	o, err := ScanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("orders: get %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("orders: get %d: %w", id, err)
	}
	list := []Order{*o}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *PGRepository) attachItems(ctx context.Context, list []Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	index := make(map[int64]int, len(list))
	for i, o := range list {
		ids[i] = o.ID
		index[o.ID] = i
	}
	rows, err := r.db.Query(ctx, `SELECT i.id, i.order_id, i.product_id, i.quantity, i.price::float8, p.name
FROM order_items i LEFT JOIN products p ON p.id = i.product_id
WHERE i.order_id = ANY($1) ORDER BY i.id`, ids)
	if err != nil {
		return fmt.Errorf("orders: items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		var productName *string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &productName); err != nil {
			return fmt.Errorf("orders: scan item: %w", err)
		}
		if item.ProductID != nil && productName != nil {
			item.Product = &ProductRef{ID: *item.ProductID, Name: *productName}
		}
		pos := index[item.OrderID]
		list[pos].Items = append(list[pos].Items, item)
	}
	return rows.Err()
}

// Create inserts an order.
func (r *PGRepository) Create(ctx context.Context, rec Record) (*Order, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO orders (user_id, total, status_id) VALUES ($1, $2, $3) RETURNING id`,
		rec.UserID, rec.Total, rec.StatusID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("orders: insert: %w", err)
	}
	return r.Get(ctx, id)
}

// Update stores the editable fields.
func (r *PGRepository) Update(ctx context.Context, id int64, changes Changes) error {
	sql, args, err := db.Builder.Update("orders").
		Set("user_id", changes.UserID).
		Set("total", changes.Total).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("orders: build update: %w", err)
	}
	return r.exec(ctx, id, "update", sql, args...)
}

// UpdateStatus sets the status of an order.
func (r *PGRepository) UpdateStatus(ctx context.Context, id, statusID int64) error {
	return r.exec(ctx, id, "update status",
		`UPDATE orders SET status_id = $2, updated_at = $3 WHERE id = $1`, id, statusID, time.Now().UTC())
}

// Delete removes an order; its items cascade.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, id, "delete", `DELETE FROM orders WHERE id = $1`, id)
}

func (r *PGRepository) exec(ctx context.Context, id int64, op, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("orders: %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orders: %s %d: %w", op, id, shared.ErrNotFound)
	}
	return nil
}

// AddItem appends a line to an order.
func (r *PGRepository) AddItem(ctx context.Context, orderID, productID int64, quantity int, price float64) (*Item, error) {
	pid := productID
	item := Item{OrderID: orderID, ProductID: &pid, Quantity: quantity, Price: price}
	err := r.db.QueryRow(ctx, `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4) RETURNING id`,
		orderID, productID, quantity, price).Scan(&item.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("orders: add item: %w", shared.ErrConflict)
		}
		return nil, fmt.Errorf("orders: add item: %w", err)
	}
	return &item, nil
}

// Statuses returns all statuses by id.
func (r *PGRepository) Statuses(ctx context.Context) ([]Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label FROM order_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("orders: statuses: %w", err)
	}
	statuses, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Status])
	if err != nil {
		return nil, fmt.Errorf("orders: collect statuses: %w", err)
	}
	return statuses, nil
}

// Status loads one status.
func (r *PGRepository) Status(ctx context.Context, id int64) (*Status, error) {
	var s Status
	err := r.db.QueryRow(ctx, `SELECT id, label FROM order_statuses WHERE id = $1`, id).Scan(&s.ID, &s.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("orders: status %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("orders: status %d: %w", id, err)
	}
	return &s, nil
}

// DefaultStatus returns the status new orders start in, the one with the lowest id.
func (r *PGRepository) DefaultStatus(ctx context.Context) (*Status, error) {
	var s Status
	err := r.db.QueryRow(ctx, `SELECT id, label FROM order_statuses ORDER BY id LIMIT 1`).Scan(&s.ID, &s.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("orders: no statuses seeded: %w", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("orders: default status: %w", err)
	}
	return &s, nil
}

var _ Repository = (*PGRepository)(nil)
