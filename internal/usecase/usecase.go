package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type BillUC interface {
	CreateBill(ctx context.Context, req *CreateBillReq) (*CreateBillRes, error)
}

type ProductUC interface {
	AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	GetSuggestions(ctx context.Context) ([]string, error)
	GetPrice(ctx context.Context, name string) (decimal.Decimal, error)
}

type UserUC interface {
	Signup(ctx context.Context, req *SignupReq) error
	Login(ctx context.Context, req *LoginReq) (*UserInfo, error)
	ListUsers(ctx context.Context) ([]UserInfo, error)
	DeleteUser(ctx context.Context, id int64) error
	OpenImage(ctx context.Context, key string) (*ImageObject, error)
}
