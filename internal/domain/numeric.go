package domain

import "github.com/shopspring/decimal"

// Масштабы совпадают с колонками NUMERIC в db/migrations.
const (
	PriceScale    = 2 // products.price, bill_purchases.price
	QuantityScale = 3 // products.units, bill_purchases.quantity

	// Дальше этих границ decimal при сравнении и округлении раздувает коэффициент до 10^|exp|.
	maxInputExponent   = 18
	maxCoefficientBits = 128
)

var (
	maxPrice    = decimal.New(1, 10) // NUMERIC(12,2)
	maxQuantity = decimal.New(1, 11) // NUMERIC(14,3)
)

// FitsPrice сообщает, что цена без потерь хранится в NUMERIC(12,2).
func FitsPrice(d decimal.Decimal) bool {
	return fitsNumeric(d, PriceScale, maxPrice)
}

// FitsQuantity сообщает, что количество или остаток без потерь хранится в NUMERIC(14,3).
func FitsQuantity(d decimal.Decimal) bool {
	return fitsNumeric(d, QuantityScale, maxQuantity)
}

// fitsNumeric проверяет границы экспоненты и коэффициента до любой арифметики,
// затем масштаб и модуль значения.
func fitsNumeric(d decimal.Decimal, scale int32, limit decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -maxInputExponent || exp > maxInputExponent {
		return false
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return false
	}

	if !d.Abs().LessThan(limit) {
		return false
	}

	// "1.500" с exp=-3 допустима как цена: лишние нули не теряются при записи
	return d.Equal(d.Round(scale))
}
