package categories

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// ErrInUse is returned when deleting a category that still has products.
var ErrInUse = fmt.Errorf("%w: category still has products", shared.ErrConflict)

// Form is the raw category form.
type Form struct {
	Name string `form:"name" json:"name" validate:"required,max=255"`
}

func (s *Service) validate(form Form) (Input, error) {
	form.Name = strings.TrimSpace(form.Name)
	if errs := s.validator.Struct(form); errs != nil {
		return Input{}, errs
	}
	return Input{Name: form.Name}, nil
}
