package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store is down")

type billFixture struct {
	inv    *memInventory
	bills  *fakeBillRepo
	outbox *fakeOutboxRepo
	tx     *passthroughTx
	cache  *fakeCache
	uc     *BillUseCase
}

func newBillFixture(units map[string]string) *billFixture {
	f := &billFixture{
		inv:    newMemInventory(units),
		bills:  &fakeBillRepo{},
		outbox: &fakeOutboxRepo{},
		tx:     &passthroughTx{},
		cache:  newFakeCache(),
	}
	f.uc = NewBillUC(f.inv, f.bills, f.outbox, f.tx, f.cache, logger.Nop{})
	f.uc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func purchase(name, price, qty string) domain.Purchase {
	return domain.NewPurchase(name, decimal.RequireFromString(price), decimal.RequireFromString(qty), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateBill_DuplicateLinesAggregated(t *testing.T) {
	f := newBillFixture(map[string]string{"ProductX": "10"})

	res, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("ProductX", "2.50", "4"),
		purchase("ProductX", "2.50", "3"),
	}))
	require.NoError(t, err)

	assert.True(t, dec("17.50").Equal(res.Total), "total %s", res.Total)
	assert.True(t, dec("3").Equal(f.inv.units("ProductX")))
	assert.Equal(t, 1, f.bills.count())
	assert.Len(t, f.bills.bills[0].Purchases, 2)
	assert.Equal(t, []string{"ProductX"}, f.inv.reserveCalls)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, BillCreated, f.outbox.events[0].EventType)
	assert.Equal(t, res.BillID, f.outbox.events[0].BillID)
	assert.Contains(t, f.cache.deletedNames(), "ProductX")
}

func TestCreateBill_InsufficientUnits(t *testing.T) {
	f := newBillFixture(map[string]string{"ProductY": "2"})

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("ProductY", "1.00", "5"),
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrInsufficientUnits)

	var insufficient *InsufficientUnitsError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Shortfalls, 1)
	assert.Equal(t, "ProductY", insufficient.Shortfalls[0].ProductName)
	assert.True(t, dec("5").Equal(insufficient.Shortfalls[0].Requested))
	assert.True(t, dec("2").Equal(insufficient.Shortfalls[0].Available))

	assert.True(t, dec("2").Equal(f.inv.units("ProductY")))
	assert.Empty(t, f.inv.reserveCalls)
	assert.Zero(t, f.bills.count())
	assert.Empty(t, f.outbox.events)
}

func TestCreateBill_AllShortfallsReported(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "1", "B": "10", "C": "0"})

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("C", "1.00", "1"),
		purchase("A", "1.00", "2"),
		purchase("B", "1.00", "1"),
	}))

	var insufficient *InsufficientUnitsError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Shortfalls, 2)
	assert.Equal(t, "A", insufficient.Shortfalls[0].ProductName)
	assert.Equal(t, "C", insufficient.Shortfalls[1].ProductName)
	assert.True(t, dec("10").Equal(f.inv.units("B")))
}

func TestCreateBill_ProductNotFound(t *testing.T) {
	f := newBillFixture(map[string]string{"ProductA": "5"})

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("ProductA", "1.00", "1"),
		purchase("ProductZ", "1.00", "1"),
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ProductZ", notFound.Name)
	assert.Equal(t, "Product 'ProductZ' not found", notFound.Error())

	// Ни одного списания, даже для существующего товара
	assert.Empty(t, f.inv.reserveCalls)
	assert.True(t, dec("5").Equal(f.inv.units("ProductA")))
	assert.Zero(t, f.bills.count())
}

func TestCreateBill_ExactStockLeavesZero(t *testing.T) {
	f := newBillFixture(map[string]string{"ProductB": "3"})

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("ProductB", "0.99", "3"),
	}))
	require.NoError(t, err)
	assert.True(t, f.inv.units("ProductB").IsZero())
}

func TestCreateBill_ConcurrentLastUnit(t *testing.T) {
	for round := 0; round < 50; round++ {
		f := newBillFixture(map[string]string{"ProductW": "1"})

		var (
			wg      sync.WaitGroup
			start   = make(chan struct{})
			results = make([]error, 2)
		)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, results[i] = f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
					purchase("ProductW", "1.00", "1"),
				}))
			}(i)
		}
		close(start)
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, e.ErrInsufficientUnits)
		}
		require.Equal(t, 1, succeeded, "round %d", round)
		require.True(t, f.inv.units("ProductW").IsZero(), "round %d", round)
		require.Equal(t, 1, f.bills.count())
	}
}

func TestCreateBill_LostRaceRestoresEarlierReservations(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "5", "B": "5"})
	// Параллельный чек забирает весь остаток B между чтением и списанием
	f.inv.beforeReserve = func(name string) {
		if name == "B" {
			f.inv.mu.Lock()
			f.inv.products["B"].Units = decimal.Zero
			f.inv.mu.Unlock()
		}
	}

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("B", "1.00", "2"),
		purchase("A", "1.00", "2"),
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrInsufficientUnits)

	assert.Equal(t, []string{"A", "B"}, f.inv.reserveCalls)
	assert.Equal(t, []string{"A"}, f.inv.restoreCalls)
	assert.True(t, dec("5").Equal(f.inv.units("A")))
	assert.Zero(t, f.bills.count())
}

func TestCreateBill_StoreErrorRestoresReservations(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "5", "B": "5", "C": "5"})
	f.inv.reserveErrOn = "C"

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("A", "1.00", "1"),
		purchase("B", "1.00", "2"),
		purchase("C", "1.00", "3"),
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, errors.Is(err, e.ErrInsufficientUnits))

	// Возврат в обратном порядке
	assert.Equal(t, []string{"B", "A"}, f.inv.restoreCalls)
	assert.True(t, dec("5").Equal(f.inv.units("A")))
	assert.True(t, dec("5").Equal(f.inv.units("B")))
	assert.True(t, dec("5").Equal(f.inv.units("C")))
}

func TestCreateBill_PersistFailureRestoresReservations(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *billFixture)
	}{
		{name: "bill repo", setup: func(f *billFixture) { f.bills.err = errStoreDown }},
		{name: "outbox repo", setup: func(f *billFixture) { f.outbox.err = errStoreDown }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillFixture(map[string]string{"A": "4", "B": "4"})
			tt.setup(f)

			_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
				purchase("A", "1.00", "4"),
				purchase("B", "1.00", "1"),
			}))
			require.ErrorIs(t, err, errStoreDown)

			assert.True(t, dec("4").Equal(f.inv.units("A")))
			assert.True(t, dec("4").Equal(f.inv.units("B")))
			assert.Empty(t, f.cache.deletedNames())
		})
	}
}

func TestCreateBill_CompensationFailureKeepsOriginalError(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "4"})
	f.bills.err = errStoreDown
	f.inv.restoreErr = errors.New("restore failed")

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("A", "1.00", "1"),
	}))
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, []string{"A"}, f.inv.restoreCalls)
}

func TestCreateBill_RestoreFailureLogLevel(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *billFixture)
		wantLevel string
	}{
		{
			// транзакция уже прервана, остатки вернёт её откат
			name:      "after store error",
			setup:     func(f *billFixture) { f.bills.err = errStoreDown },
			wantLevel: "WARN",
		},
		{
			name: "after lost race",
			setup: func(f *billFixture) {
				f.inv.beforeReserve = func(name string) {
					if name == "B" {
						f.inv.mu.Lock()
						f.inv.products["B"].Units = decimal.Zero
						f.inv.mu.Unlock()
					}
				}
			},
			wantLevel: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillFixture(map[string]string{"A": "4", "B": "4"})
			var buf bytes.Buffer
			f.uc.logger = logger.NewSlogLoggerWithWriter(&buf, slog.LevelDebug)
			f.inv.restoreErr = errors.New("current transaction is aborted")
			tt.setup(f)

			_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
				purchase("A", "1.00", "1"),
				purchase("B", "1.00", "1"),
			}))
			require.Error(t, err)

			var levels []string
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var entry struct {
					Level string `json:"level"`
					Msg   string `json:"msg"`
				}
				require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
				if strings.Contains(entry.Msg, "reservation(s)") {
					levels = append(levels, entry.Level)
				}
			}
			assert.Equal(t, []string{tt.wantLevel}, levels)
		})
	}
}

func TestCreateBill_CancelledContextStillCompensates(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "4"})
	ctx, cancel := context.WithCancel(context.Background())
	f.bills.err = errStoreDown
	f.inv.beforeReserve = func(string) { cancel() }

	_, err := f.uc.CreateBill(ctx, NewCreateBillReq([]domain.Purchase{
		purchase("A", "1.00", "1"),
	}))
	require.Error(t, err)
	assert.True(t, dec("4").Equal(f.inv.units("A")))
}

func TestCreateBill_FindError(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "4"})
	f.inv.findErr = errStoreDown

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("A", "1.00", "1"),
	}))
	require.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, f.inv.reserveCalls)
}

func TestCreateBill_Validation(t *testing.T) {
	tests := []struct {
		name      string
		purchases []domain.Purchase
		want      error
	}{
		{name: "empty", purchases: nil, want: e.ErrNoPurchases},
		{name: "blank name", purchases: []domain.Purchase{purchase("  ", "1.00", "1")}, want: e.ErrProductNameRequired},
		{name: "zero quantity", purchases: []domain.Purchase{purchase("A", "1.00", "0")}, want: e.ErrInvalidQuantity},
		{name: "negative quantity", purchases: []domain.Purchase{purchase("A", "1.00", "-1")}, want: e.ErrInvalidQuantity},
		{name: "negative price", purchases: []domain.Purchase{purchase("A", "-1.00", "1")}, want: e.ErrInvalidPrice},
		{name: "tiny exponent quantity", purchases: []domain.Purchase{purchase("A", "1.00", "1e-200000000")}, want: e.ErrQuantityPrecision},
		{name: "huge exponent quantity", purchases: []domain.Purchase{purchase("A", "1.00", "1e200000000")}, want: e.ErrQuantityPrecision},
		{name: "tiny exponent price", purchases: []domain.Purchase{purchase("A", "1e-200000000", "1")}, want: e.ErrPricePrecision},
		{name: "quantity below storage scale", purchases: []domain.Purchase{purchase("A", "1.00", "0.0001")}, want: e.ErrQuantityPrecision},
		{name: "quantity rounded on write", purchases: []domain.Purchase{purchase("A", "1.00", "0.0006")}, want: e.ErrQuantityPrecision},
		{name: "price with four decimals", purchases: []domain.Purchase{purchase("A", "1.2345", "1")}, want: e.ErrPricePrecision},
		{name: "price with three decimals", purchases: []domain.Purchase{purchase("A", "0.335", "1")}, want: e.ErrPricePrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillFixture(map[string]string{"A": "4"})

			_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq(tt.purchases))
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.tx.calls)
		})
	}
}

func TestCreateBill_TotalUsesRequestPrices(t *testing.T) {
	f := newBillFixture(nil)
	f.inv.put("Rice", "99.99", "10")
	f.inv.put("Bread", "1.00", "10")

	res, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("Rice", "1.99", "0.333"),
		purchase("Bread", "1.10", "2"),
	}))
	require.NoError(t, err)
	// 0.66267 + 2.20 = 2.86267 -> 2.86
	assert.Equal(t, "2.86", res.Total.StringFixed(2))
	assert.Equal(t, "9.667", f.inv.units("Rice").String())
}

func TestCreateBill_TrailingZerosWithinScale(t *testing.T) {
	f := newBillFixture(map[string]string{"A": "4"})

	_, err := f.uc.CreateBill(context.Background(), NewCreateBillReq([]domain.Purchase{
		purchase("A", "1.5000", "1.000000"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "3", f.inv.units("A").String())
}
