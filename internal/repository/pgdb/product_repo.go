package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, price, type, units, created_at, updated_at`

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
// Внутри транзакции (tr.WithTx) все запросы идут через неё, иначе через пул.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// FindByNames читает все товары с указанными именами одним запросом.
// Отсутствующих имён в результате просто нет.
func (p *ProductRepo) FindByNames(ctx context.Context, names []string) (map[string]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = ANY($1)`

	rows, err := tr.ExecutorFromCtx(ctx, p.pool).Query(ctx, query, names)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(names))
	for rows.Next() {
		var model converter.ProductModel
		if err := scanProduct(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result[model.Name] = *p.conv.ToEntity(&model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// ReserveUnits атомарно списывает qty, только если остатка хватает.
// false без ошибки — остатка не хватило (или товара нет), ничего не изменено.
func (p *ProductRepo) ReserveUnits(ctx context.Context, name string, qty decimal.Decimal) (bool, error) {
	query := `
		UPDATE products
		SET units = units - $2, updated_at = NOW()
		WHERE name = $1 AND units >= $2
	`

	tag, err := tr.ExecutorFromCtx(ctx, p.pool).Exec(ctx, query, name, qty)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() == 1, nil
}

// RestoreUnits возвращает qty на склад относительным UPDATE.
func (p *ProductRepo) RestoreUnits(ctx context.Context, name string, qty decimal.Decimal) error {
	query := `
		UPDATE products
		SET units = units + $2, updated_at = NOW()
		WHERE name = $1
	`

	tag, err := tr.ExecutorFromCtx(ctx, p.pool).Exec(ctx, query, name, qty)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// Create добавляет товар. Повтор имени — e.ErrProductExists.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (name, price, type, units, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()))
		RETURNING ` + productColumns

	var created converter.ProductModel
	err := scanProduct(
		tr.ExecutorFromCtx(ctx, p.pool).QueryRow(ctx, query,
			model.Name, model.Price, model.Type, model.Units, optionalTime(model.CreatedAt),
		),
		&created,
	)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&created), nil
}

// List возвращает все товары в порядке создания.
func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	rows, err := tr.ExecutorFromCtx(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := scanProduct(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Update перезаписывает товар по ID и возвращает прежнее имя, чтобы вызывающий мог почистить кэш.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*usecase.UpdateProductRes, error) {
	model := p.conv.ToModel(product)
	query := `
		WITH old AS (
			SELECT id, name FROM products WHERE id = $1 FOR UPDATE
		)
		UPDATE products pr
		SET
			name = $2,
			price = $3,
			type = $4,
			units = $5,
			created_at = COALESCE($6::timestamptz, pr.created_at),
			updated_at = NOW()
		FROM old
		WHERE pr.id = old.id
		RETURNING pr.id, pr.name, pr.price, pr.type, pr.units, pr.created_at, pr.updated_at, old.name
	`

	var (
		updated      converter.ProductModel
		previousName string
	)
	err := tr.ExecutorFromCtx(ctx, p.pool).QueryRow(ctx, query,
		model.ID, model.Name, model.Price, model.Type, model.Units, optionalTime(model.CreatedAt),
	).Scan(
		&updated.ID, &updated.Name, &updated.Price, &updated.Type, &updated.Units,
		&updated.CreatedAt, &updated.UpdatedAt, &previousName,
	)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		case postgresDuplicate(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return usecase.NewUpdateProductRes(p.conv.ToEntity(&updated), previousName), nil
}

// FindByName возвращает товар по точному имени или e.ErrProductNotFound.
func (p *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`

	var model converter.ProductModel
	if err := scanProduct(tr.ExecutorFromCtx(ctx, p.pool).QueryRow(ctx, query, name), &model); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Names возвращает различные имена товаров по алфавиту.
func (p *ProductRepo) Names(ctx context.Context) ([]string, error) {
	rows, err := tr.ExecutorFromCtx(ctx, p.pool).Query(ctx, `SELECT DISTINCT name FROM products ORDER BY name`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return names, nil
}

func scanProduct(row pgx.Row, model *converter.ProductModel) error {
	return row.Scan(
		&model.ID, &model.Name, &model.Price, &model.Type, &model.Units,
		&model.CreatedAt, &model.UpdatedAt,
	)
}

// optionalTime превращает нулевое время в NULL, чтобы сработал DEFAULT/COALESCE.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
