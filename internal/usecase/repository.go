package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// InventoryStore — хранилище остатков, с которым работает проведение чека.
type InventoryStore interface {
	// FindByNames одним запросом возвращает найденные товары, ключ — имя. Отсутствующих имён в map нет.
	FindByNames(ctx context.Context, names []string) (map[string]domain.Product, error)
	// ReserveUnits атомарно списывает qty, только если остатка хватает. false — списания не было.
	ReserveUnits(ctx context.Context, name string, qty decimal.Decimal) (bool, error)
	// RestoreUnits возвращает qty на склад.
	RestoreUnits(ctx context.Context, name string, qty decimal.Decimal) error
}

type ProductRepository interface {
	InventoryStore
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*UpdateProductRes, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	Names(ctx context.Context) ([]string, error)
}

type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) (*domain.Bill, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

// CacheRepository — кэш карточек товаров по имени и списка имён для подсказок.
type CacheRepository interface {
	GetProducts(ctx context.Context, names []string) (map[string]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, names []string) error
	GetProductNames(ctx context.Context) ([]string, bool, error)
	SetProductNames(ctx context.Context, names []string) error
	DeleteProductNames(ctx context.Context) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Get(ctx context.Context, key string) (*ImageObject, error)
	Delete(ctx context.Context, key string) error
}

// TxRunner выполняет fn в одной транзакции; ошибка fn откатывает всё, что было сделано внутри.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
