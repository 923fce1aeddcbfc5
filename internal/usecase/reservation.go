package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ReservationStatus — бизнес-исход резервирования. Ошибки хранилища сюда не попадают.
type ReservationStatus int

const (
	Reserved ReservationStatus = iota
	NotFound
	InsufficientStock
)

func (s ReservationStatus) String() string {
	switch s {
	case Reserved:
		return "reserved"
	case NotFound:
		return "not_found"
	case InsufficientStock:
		return "insufficient_stock"
	default:
		return "unknown"
	}
}

// Shortfall описывает нехватку остатка по одному товару.
type Shortfall struct {
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

type ReservationResult struct {
	Status     ReservationStatus
	Missing    string      // для NotFound
	Shortfalls []Shortfall // для InsufficientStock
}

// Err переводит неуспешный исход в типизированную ошибку.
func (r ReservationResult) Err() error {
	switch r.Status {
	case NotFound:
		return &ProductNotFoundError{Name: r.Missing}
	case InsufficientStock:
		return &InsufficientUnitsError{Shortfalls: r.Shortfalls}
	default:
		return nil
	}
}

type reservedUnits struct {
	name string
	qty  decimal.Decimal
}

// reservationJournal запоминает каждое применённое списание, чтобы при неудаче вернуть все.
type reservationJournal struct {
	store   InventoryStore
	applied []reservedUnits
}

func newReservationJournal(store InventoryStore) *reservationJournal {
	return &reservationJournal{store: store}
}

func (j *reservationJournal) record(name string, qty decimal.Decimal) {
	j.applied = append(j.applied, reservedUnits{name: name, qty: qty})
}

func (j *reservationJournal) len() int {
	return len(j.applied)
}

// compensate возвращает все списания в обратном порядке. Продолжает при ошибках и возвращает их вместе.
// Возврат относительный (units + qty), поэтому не затирает изменения параллельных чеков.
func (j *reservationJournal) compensate(ctx context.Context) error {
	var errs []error
	for i := len(j.applied) - 1; i >= 0; i-- {
		r := j.applied[i]
		if err := j.store.RestoreUnits(ctx, r.name, r.qty); err != nil {
			errs = append(errs, err)
		}
	}
	j.applied = nil

	return errors.Join(errs...)
}

// reserveInventory резервирует остатки под агрегированные количества.
//
// Один пакетный запрос читает все товары. Если какого-то нет — NotFound, ничего не списано.
// Если по снимку остатка не хватает хотя бы одному товару — InsufficientStock со списком всех нехваток,
// ничего не списано. Иначе товары списываются условным UPDATE в отсортированном порядке.
// Проигранная гонка с параллельным чеком записывается как нехватка, цикл идёт дальше,
// и в итоге InsufficientStock перечисляет все такие товары с остатком на момент после цикла.
// Каждое списание пишется в journal, откат — забота вызывающего.
func reserveInventory(
	ctx context.Context,
	store InventoryStore,
	quantities map[string]decimal.Decimal,
	journal *reservationJournal,
) (ReservationResult, error) {
	names := domain.SortedNames(quantities)

	products, err := store.FindByNames(ctx, names)
	if err != nil {
		return ReservationResult{}, err
	}

	for _, name := range names {
		if _, ok := products[name]; !ok {
			return ReservationResult{Status: NotFound, Missing: name}, nil
		}
	}

	var shortfalls []Shortfall
	for _, name := range names {
		product := products[name]
		if !product.HasUnits(quantities[name]) {
			shortfalls = append(shortfalls, Shortfall{
				ProductName: name,
				Requested:   quantities[name],
				Available:   product.Units,
			})
		}
	}
	if len(shortfalls) > 0 {
		return ReservationResult{Status: InsufficientStock, Shortfalls: shortfalls}, nil
	}

	var lost []string
	for _, name := range names {
		qty := quantities[name]

		ok, err := store.ReserveUnits(ctx, name, qty)
		if err != nil {
			return ReservationResult{}, err
		}
		if !ok {
			lost = append(lost, name)
			continue
		}

		journal.record(name, qty)
	}

	if len(lost) == 0 {
		return ReservationResult{Status: Reserved}, nil
	}

	return lostRaceShortfalls(ctx, store, lost, quantities)
}

// lostRaceShortfalls перечитывает товары, проигравшие гонку. Снимок до цикла показывал достаточный остаток,
// поэтому в нехватке отдаётся текущее значение. Товар, удалённый параллельно, числится с нулевым остатком.
func lostRaceShortfalls(
	ctx context.Context,
	store InventoryStore,
	lost []string,
	quantities map[string]decimal.Decimal,
) (ReservationResult, error) {
	current, err := store.FindByNames(ctx, lost)
	if err != nil {
		return ReservationResult{}, err
	}

	shortfalls := make([]Shortfall, 0, len(lost))
	for _, name := range lost {
		available := decimal.Zero
		if p, ok := current[name]; ok {
			available = p.Units
		}
		shortfalls = append(shortfalls, Shortfall{
			ProductName: name,
			Requested:   quantities[name],
			Available:   available,
		})
	}

	return ReservationResult{Status: InsufficientStock, Shortfalls: shortfalls}, nil
}
