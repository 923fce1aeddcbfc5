package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар на складе. Имя уникально и служит ключом для чеков.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Type      string
	Units     decimal.Decimal // Остаток на складе, не может быть отрицательным
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewProduct(name string, price decimal.Decimal, productType string, units decimal.Decimal) *Product {
	return &Product{
		Name:  name,
		Price: price,
		Type:  productType,
		Units: units,
	}
}

// HasUnits сообщает, хватает ли остатка на qty единиц.
func (p *Product) HasUnits(qty decimal.Decimal) bool {
	return p.Units.GreaterThanOrEqual(qty)
}
