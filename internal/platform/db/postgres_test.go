package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestViolationCodes(t *testing.T) {
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestBuilderUsesDollarPlaceholders(t *testing.T) {
	sql, args, err := Builder.Select("id").From("products").Where("category_id = ?", 7).ToSql()
	assert.NoError(t, err)
	assert.Equal(t, "SELECT id FROM products WHERE category_id = $1", sql)
	assert.Equal(t, []any{7}, args)
}
