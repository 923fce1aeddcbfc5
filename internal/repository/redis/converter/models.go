package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRedisModel — карточка товара в кэше. decimal сериализуется строкой, точность не теряется.
type ProductRedisModel struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Type      string          `json:"type"`
	Units     decimal.Decimal `json:"units"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}
