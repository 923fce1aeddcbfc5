package usecase

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/pos-backend/pkg/e"
)

// ProductNotFoundError — в чеке указан товар, которого нет на складе.
type ProductNotFoundError struct {
	Name string
}

func (p *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product '%s' not found", p.Name)
}

func (p *ProductNotFoundError) Unwrap() error {
	return e.ErrProductNotFound
}

// InsufficientUnitsError — одному или нескольким товарам не хватило остатка.
type InsufficientUnitsError struct {
	Shortfalls []Shortfall
}

func (i *InsufficientUnitsError) Error() string {
	names := make([]string, 0, len(i.Shortfalls))
	for _, s := range i.Shortfalls {
		names = append(names, fmt.Sprintf("%s (requested %s, available %s)", s.ProductName, s.Requested, s.Available))
	}

	return fmt.Sprintf("%s: %s", e.ErrInsufficientUnits.Error(), strings.Join(names, ", "))
}

func (i *InsufficientUnitsError) Unwrap() error {
	return e.ErrInsufficientUnits
}
