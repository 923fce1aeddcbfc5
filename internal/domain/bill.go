package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill — проведённый чек. Хранит копии строк, поэтому не зависит от последующих правок товаров.
type Bill struct {
	ID        int64
	Purchases []Purchase
	Total     decimal.Decimal
	CreatedAt time.Time
}

func NewBill(purchases []Purchase, total decimal.Decimal) *Bill {
	copied := make([]Purchase, len(purchases))
	copy(copied, purchases)

	return &Bill{
		Purchases: copied,
		Total:     total,
	}
}
