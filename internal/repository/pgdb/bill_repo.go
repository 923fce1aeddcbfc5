package pgdb

import (
	"context"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// BillRepo сохраняет проведённые чеки. Работает только внутри транзакции.
type BillRepo struct {
	pool *pgxpool.Pool
	conv converter.BillConverter
}

func NewBillRepo(pool *pgxpool.Pool, conv converter.BillConverter) *BillRepo {
	return &BillRepo{pool: pool, conv: conv}
}

// Create вставляет чек и его строки пакетом, сохраняя порядок строк в position.
func (b *BillRepo) Create(ctx context.Context, bill *domain.Bill) (*domain.Bill, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, purchases := b.conv.ToModel(bill)

	query := `
		INSERT INTO bills (total, created_at)
		VALUES ($1, COALESCE($2::timestamptz, NOW()))
		RETURNING id, created_at;
	`
	if err := tx.QueryRow(ctx, query, model.Total, optionalTime(model.CreatedAt)).
		Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for i := range purchases {
		purchases[i].BillID = model.ID
		batch.Queue(`
			INSERT INTO bill_purchases (bill_id, position, product_name, price, quantity, date)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))`,
			purchases[i].BillID,
			purchases[i].Position,
			purchases[i].ProductName,
			purchases[i].Price,
			purchases[i].Quantity,
			optionalTime(purchases[i].Date),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range purchases {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return b.conv.ToEntity(model, purchases), nil
}
