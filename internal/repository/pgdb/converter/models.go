package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID        int64           `db:"id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Type      string          `db:"type"`
	Units     decimal.Decimal `db:"units"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt *time.Time      `db:"updated_at"`
}

// BillModel представляет запись таблицы bills в PostgreSQL.
type BillModel struct {
	ID        int64           `db:"id"`
	Total     decimal.Decimal `db:"total"`
	CreatedAt time.Time       `db:"created_at"`
}

// BillPurchaseModel представляет строку чека в таблице bill_purchases.
type BillPurchaseModel struct {
	BillID      int64           `db:"bill_id"`
	Position    int             `db:"position"`
	ProductName string          `db:"product_name"`
	Price       decimal.Decimal `db:"price"`
	Quantity    decimal.Decimal `db:"quantity"`
	Date        time.Time       `db:"date"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	PasswordHash     string    `db:"password_hash"`
	Role             string    `db:"role"`
	Age              string    `db:"age"`
	Gender           string    `db:"gender"`
	Date             time.Time `db:"date"`
	Shift            string    `db:"shift"`
	ImageKey         *string   `db:"image_key"`
	ImageContentType *string   `db:"image_content_type"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	BillID      int64      `db:"bill_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
