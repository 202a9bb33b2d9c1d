package products

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/validation"
)

// validate checks form rules, category existence and the optional image.
func (s *Service) validate(ctx context.Context, form Form) (Record, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Price = strings.TrimSpace(form.Price)
	form.Quantity = strings.TrimSpace(form.Quantity)
	form.SKU = strings.TrimSpace(form.SKU)
	form.CategoryID = strings.TrimSpace(form.CategoryID)

	errs := s.validator.Struct(form)
	if errs == nil {
		errs = validation.Errors{}
	}

	var categoryID int64
	if !errs.Has("category_id") {
		id, parseErr := strconv.ParseInt(form.CategoryID, 10, 64)
		exists := false
		if parseErr == nil && id > 0 {
			var err error
			if exists, err = s.categories.Exists(ctx, id); err != nil {
				return Record{}, err
			}
		}
		if !exists {
			errs.Add("category_id", validation.Invalid("category_id"))
		}
		categoryID = id
	}

	var price float64
	if !errs.Has("price") {
		var err error
		if price, err = validation.ParseNumber(form.Price); err != nil || price < 0 {
			errs.Add("price", validation.Invalid("price"))
		}
	}
	var quantity int
	if !errs.Has("quantity") {
		value, err := validation.ParseNumber(form.Quantity)
		if err != nil || value < 0 || value > math.MaxInt32 {
			errs.Add("quantity", validation.Invalid("quantity"))
		} else {
			quantity = int(value)
		}
	}

	switch err := storage.CheckImage(form.Image); {
	case errors.Is(err, storage.ErrTooLarge):
		errs.Add("image", "The image field must not be greater than 2048 kilobytes.")
	case errors.Is(err, storage.ErrImageType):
		errs.Add("image", "The image field must be a file of type: jpeg, png, jpg, gif.")
	case errors.Is(err, storage.ErrNotImage):
		errs.Add("image", "The image field must be an image.")
	}

	if err := errs.Err(); err != nil {
		return Record{}, err
	}

	return Record{
		Name:        form.Name,
		Description: optional(form.Description),
		Price:       price,
		Quantity:    quantity,
		SKU:         optional(form.SKU),
		CategoryID:  categoryID,
	}, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
