package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TotalPrecision — число знаков после запятой в сумме чека.
const TotalPrecision = 2

// AggregateQuantities суммирует количество по каждому товару.
// Ключи — различные имена товаров из purchases.
func AggregateQuantities(purchases []Purchase) map[string]decimal.Decimal {
	quantities := make(map[string]decimal.Decimal, len(purchases))
	for _, p := range purchases {
		quantities[p.ProductName] = quantities[p.ProductName].Add(p.Quantity)
	}

	return quantities
}

// CalculateTotal считает сумму чека по исходным строкам (не по агрегату):
// Σ price × quantity с округлением до двух знаков.
func CalculateTotal(purchases []Purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(p.Amount())
	}

	return total.Round(TotalPrecision)
}

// SortedNames возвращает ключи в каноническом порядке.
// В этом порядке резервируются остатки, чтобы параллельные чеки блокировали строки одинаково.
func SortedNames(quantities map[string]decimal.Decimal) []string {
	names := make([]string, 0, len(quantities))
	for name := range quantities {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
