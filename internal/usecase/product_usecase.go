package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// backgroundCacheTimeout — таймаут фонового заполнения кэша после промаха.
const backgroundCacheTimeout = 500 * time.Millisecond

// ProductUseCase реализует управление товарами склада.
type ProductUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductUC(productRepo ProductRepository, cacheRepo CacheRepository, logger logger.Logger) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// AddProduct создаёт товар. Имя уникально: повтор возвращает e.ErrProductExists.
func (p *ProductUseCase) AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.AddProduct"

	name := strings.TrimSpace(req.Name)
	if err := validateProduct(name, req.Price, req.Units); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Create(ctx, domain.NewProduct(name, req.Price, req.Type, req.Units))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidateNames(ctx, op)
	return product, nil
}

// ListProducts возвращает все товары.
func (p *ProductUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// UpdateProduct полностью перезаписывает товар по ID.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if req.ID <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	name := strings.TrimSpace(req.Name)
	if err := validateProduct(name, req.Price, req.Units); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := domain.NewProduct(name, req.Price, req.Type, req.Units)
	product.ID = req.ID
	if req.Date != nil {
		product.CreatedAt = *req.Date
	}

	res, err := p.productRepo.Update(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Имя могло поменяться: чистим карточки под старым и новым именем и подсказки
	stale := []string{res.Product.Name}
	if res.PreviousName != res.Product.Name {
		stale = append(stale, res.PreviousName)
	}
	if err := p.cacheRepo.DeleteProducts(ctx, stale); err != nil {
		p.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}
	p.invalidateNames(ctx, op)

	return res.Product, nil
}

// GetSuggestions возвращает различные имена товаров для автодополнения.
func (p *ProductUseCase) GetSuggestions(ctx context.Context) ([]string, error) {
	const op = "ProductUseCase.GetSuggestions"

	names, ok, err := p.cacheRepo.GetProductNames(ctx)
	if err == nil && ok {
		return names, nil
	}

	names, err = p.productRepo.Names(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
		defer cancel()

		if err := p.cacheRepo.SetProductNames(bgCtx, names); err != nil {
			p.logger.Warnf("Failed to cache product names in background: %v", e.Wrap(op, err))
		}
	}()

	return names, nil
}

// GetPrice возвращает цену товара по имени. Сначала смотрит в кэш, при промахе — в БД.
func (p *ProductUseCase) GetPrice(ctx context.Context, name string) (decimal.Decimal, error) {
	const op = "ProductUseCase.GetPrice"

	if strings.TrimSpace(name) == "" {
		return decimal.Zero, e.Wrap(op, e.ErrProductNameRequired)
	}

	cached, err := p.cacheRepo.GetProducts(ctx, []string{name})
	if err == nil {
		if product, ok := cached[name]; ok {
			return product.Price, nil
		}
	}

	product, err := p.productRepo.FindByName(ctx, name)
	if err != nil {
		return decimal.Zero, e.Wrap(op, err)
	}

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
		defer cancel()

		if err := p.cacheRepo.SetProducts(bgCtx, []domain.Product{*product}); err != nil {
			p.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return product.Price, nil
}

func (p *ProductUseCase) invalidateNames(ctx context.Context, op string) {
	if err := p.cacheRepo.DeleteProductNames(ctx); err != nil {
		p.logger.Warnf("Failed to delete product names: %v", e.Wrap(op, err))
	}
}

// validateProduct проверяет имя, цену (не отрицательная, не более двух знаков) и остаток (не более трёх знаков).
func validateProduct(name string, price, units decimal.Decimal) error {
	if name == "" {
		return e.ErrProductNameRequired
	}

	if price.IsNegative() {
		return e.ErrInvalidPrice
	}

	if !domain.FitsPrice(price) {
		return e.ErrPricePrecision
	}

	if units.IsNegative() {
		return e.ErrInvalidUnits
	}

	if !domain.FitsQuantity(units) {
		return e.ErrUnitsPrecision
	}

	return nil
}
