package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// BILL

type PurchaseDTO struct {
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"number"`
	Date        Date            `json:"date" swaggertype:"string"`
}

type CreateBillRequest struct {
	Purchases []PurchaseDTO `json:"purchases"`
}

func (r *CreateBillRequest) toPurchases() []domain.Purchase {
	purchases := make([]domain.Purchase, 0, len(r.Purchases))
	for _, p := range r.Purchases {
		purchases = append(purchases, domain.NewPurchase(p.ProductName, p.Price, p.Quantity, p.Date.Time))
	}
	return purchases
}

// PRODUCTS

type ProductRequest struct {
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Type        string          `json:"type"`
	Units       decimal.Decimal `json:"units" swaggertype:"number"`
	Date        Date            `json:"date" swaggertype:"string"`
}

type ProductResponse struct {
	ID          int64       `json:"id"`
	ProductName string      `json:"productName"`
	Price       json.Number `json:"price" swaggertype:"number"`
	Type        string      `json:"type"`
	Units       json.Number `json:"units" swaggertype:"number"`
	Date        time.Time   `json:"date"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		ProductName: p.Name,
		Price:       jsonNumber(p.Price),
		Type:        p.Type,
		Units:       jsonNumber(p.Units),
		Date:        p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type UpdateProductResponse struct {
	Message        string          `json:"message"`
	UpdatedProduct ProductResponse `json:"updatedProduct"`
}

type SuggestionsResponse struct {
	ProductNames []string `json:"productNames"`
}

type PriceResponse struct {
	Price json.Number `json:"price" swaggertype:"number"`
}

// USERS

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int64     `json:"id,omitempty"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Image    *string   `json:"image"`
	Gender   string    `json:"gender"`
	Age      string    `json:"age"`
	Date     time.Time `json:"date"`
	Shift    string    `json:"shift"`
}

func toUserResponse(u usecase.UserInfo) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Image:    u.Image,
		Gender:   u.Gender,
		Age:      u.Age,
		Date:     u.Date,
		Shift:    u.Shift,
	}
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// signupJSON — тело /signup без файла, когда клиент шлёт JSON.
type signupJSON struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Date     Date   `json:"date"`
	Shift    string `json:"shift"`
}
