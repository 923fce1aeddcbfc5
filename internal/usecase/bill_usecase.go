package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
)

// compensationTimeout ограничивает возврат остатков, который выполняется даже после отмены запроса.
const compensationTimeout = 5 * time.Second

// BillUseCase проводит чек: резервирует остатки, считает сумму и сохраняет чек с outbox-событием.
type BillUseCase struct {
	inventory  InventoryStore
	billRepo   BillRepository
	outboxRepo OutboxRepository
	txRunner   TxRunner
	cacheRepo  CacheRepository
	logger     logger.Logger
	now        func() time.Time
}

func NewBillUC(
	inventory InventoryStore,
	billRepo BillRepository,
	outboxRepo OutboxRepository,
	txRunner TxRunner,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *BillUseCase {
	return &BillUseCase{
		inventory:  inventory,
		billRepo:   billRepo,
		outboxRepo: outboxRepo,
		txRunner:   txRunner,
		cacheRepo:  cacheRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateBill проводит чек целиком или не проводит вовсе.
//
// Возвращает *ProductNotFoundError, *InsufficientUnitsError (через errors.As)
// или ошибку хранилища. При любой ошибке все уже применённые списания возвращаются,
// а транзакция откатывается.
func (b *BillUseCase) CreateBill(ctx context.Context, req *CreateBillReq) (*CreateBillRes, error) {
	const op = "BillUseCase.CreateBill"

	if err := validatePurchases(req.Purchases); err != nil {
		return nil, e.Wrap(op, err)
	}

	quantities := domain.AggregateQuantities(req.Purchases)

	var bill *domain.Bill
	err := b.txRunner.WithinTx(ctx, func(ctx context.Context) (err error) {
		journal := newReservationJournal(b.inventory)
		// Откат списаний при любой ошибке, в том числе бизнесовой
		defer func() {
			if err != nil && journal.len() > 0 {
				b.compensate(ctx, journal, err)
			}
		}()

		res, err := reserveInventory(ctx, b.inventory, quantities, journal)
		if err != nil {
			return err
		}
		if err = res.Err(); err != nil {
			return err
		}

		total := domain.CalculateTotal(req.Purchases)
		bill, err = b.billRepo.Create(ctx, domain.NewBill(req.Purchases, total))
		if err != nil {
			return err
		}

		event, err := NewBillCreatedEvent(bill, b.now().UTC())
		if err != nil {
			return err
		}

		if _, err = b.outboxRepo.Create(ctx, event); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			b.logger.Warnf("%s: bill rejected: %v", op, err)
		} else {
			b.logger.Errorf(err, "%s: bill failed", op)
		}
		return nil, e.Wrap(op, err)
	}

	// Остатки изменились — кэш карточек этих товаров больше не актуален
	if err := b.cacheRepo.DeleteProducts(ctx, domain.SortedNames(quantities)); err != nil {
		b.logger.Warnf("Failed to invalidate products cache: %v", e.Wrap(op, err))
	}

	b.logger.Infof("bill %d stored, total %s, lines %d", bill.ID, bill.Total.StringFixed(domain.TotalPrecision), len(bill.Purchases))
	return NewCreateBillRes(bill.ID, bill.Total), nil
}

// compensate возвращает списания журнала. Контекст запроса мог быть отменён, поэтому
// используется отвязанный от отмены контекст с собственным таймаутом (значения, включая транзакцию, сохраняются).
//
// После ошибки хранилища транзакция Postgres уже прервана и возврат в ней не выполнится,
// списания снимает откат транзакции. Такой сбой возврата пишется предупреждением, а не ошибкой.
func (b *BillUseCase) compensate(ctx context.Context, journal *reservationJournal, cause error) {
	const op = "BillUseCase.compensate"

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	n := journal.len()
	if err := journal.compensate(ctx); err != nil {
		if isBusinessError(cause) {
			b.logger.Errorf(e.Wrap(op, err), "failed to restore %d reservation(s)", n)
			return
		}
		b.logger.Warnf("%s: %d reservation(s) left to transaction rollback after %v: %v", op, n, cause, err)
		return
	}

	b.logger.Infof("%s: restored %d reservation(s)", op, n)
}

func validatePurchases(purchases []domain.Purchase) error {
	if len(purchases) == 0 {
		return e.ErrNoPurchases
	}

	for _, p := range purchases {
		if strings.TrimSpace(p.ProductName) == "" {
			return e.ErrProductNameRequired
		}
		// Знак проверяется без пересчёта масштаба, Fits* до любой арифметики над значением
		if !p.Quantity.IsPositive() {
			return e.Wrap(p.ProductName, e.ErrInvalidQuantity)
		}
		if !domain.FitsQuantity(p.Quantity) {
			return e.Wrap(p.ProductName, e.ErrQuantityPrecision)
		}
		if p.Price.IsNegative() {
			return e.Wrap(p.ProductName, e.ErrInvalidPrice)
		}
		if !domain.FitsPrice(p.Price) {
			return e.Wrap(p.ProductName, e.ErrPricePrecision)
		}
	}

	return nil
}

func isBusinessError(err error) bool {
	return errors.Is(err, e.ErrProductNotFound) || errors.Is(err, e.ErrInsufficientUnits)
}
