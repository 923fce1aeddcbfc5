package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase — строка чека. Товар указывается по имени, цена фиксируется на момент продажи.
type Purchase struct {
	ProductName string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	Date        time.Time
}

func NewPurchase(productName string, price, quantity decimal.Decimal, date time.Time) Purchase {
	return Purchase{
		ProductName: productName,
		Price:       price,
		Quantity:    quantity,
		Date:        date,
	}
}

// Amount возвращает стоимость строки без округления.
func (p Purchase) Amount() decimal.Decimal {
	return p.Price.Mul(p.Quantity)
}
