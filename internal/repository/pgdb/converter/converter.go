package converter

import (
	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
}

// BillConverter преобразует чек в строки bills и bill_purchases и обратно.
type BillConverter interface {
	ToModel(entity *domain.Bill) (*BillModel, []BillPurchaseModel)
	ToEntity(model *BillModel, purchases []BillPurchaseModel) *domain.Bill
}

// UserConverter преобразует сущности User между domain и моделью PostgreSQL.
type UserConverter interface {
	ToModel(entity *domain.User) *UserModel
	ToEntity(model *UserModel) *domain.User
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}
	return &ProductModel{
		ID:        entity.ID,
		Name:      entity.Name,
		Price:     entity.Price,
		Type:      entity.Type,
		Units:     entity.Units,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}
	return &domain.Product{
		ID:        model.ID,
		Name:      model.Name,
		Price:     model.Price,
		Type:      model.Type,
		Units:     model.Units,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

type BillConverterImpl struct{}

// ToModel нумерует строки чека с нуля, сохраняя исходный порядок.
func (BillConverterImpl) ToModel(entity *domain.Bill) (*BillModel, []BillPurchaseModel) {
	model := &BillModel{ID: entity.ID, Total: entity.Total, CreatedAt: entity.CreatedAt}

	purchases := make([]BillPurchaseModel, 0, len(entity.Purchases))
	for i, p := range entity.Purchases {
		purchases = append(purchases, BillPurchaseModel{
			BillID:      entity.ID,
			Position:    i,
			ProductName: p.ProductName,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Date:        p.Date,
		})
	}

	return model, purchases
}

func (BillConverterImpl) ToEntity(model *BillModel, purchases []BillPurchaseModel) *domain.Bill {
	bill := &domain.Bill{
		ID:        model.ID,
		Total:     model.Total,
		CreatedAt: model.CreatedAt,
		Purchases: make([]domain.Purchase, 0, len(purchases)),
	}
	for _, p := range purchases {
		bill.Purchases = append(bill.Purchases, domain.NewPurchase(p.ProductName, p.Price, p.Quantity, p.Date))
	}

	return bill
}

type UserConverterImpl struct{}

func (UserConverterImpl) ToModel(entity *domain.User) *UserModel {
	if entity == nil {
		return nil
	}
	model := &UserModel{
		ID:           entity.ID,
		Username:     entity.Username,
		PasswordHash: entity.PasswordHash,
		Role:         entity.Role,
		Age:          entity.Age,
		Gender:       entity.Gender,
		Date:         entity.Date,
		Shift:        entity.Shift,
	}
	if entity.Image != nil {
		key, contentType := entity.Image.ObjectKey, entity.Image.ContentType
		model.ImageKey = &key
		model.ImageContentType = &contentType
	}

	return model
}

func (UserConverterImpl) ToEntity(model *UserModel) *domain.User {
	if model == nil {
		return nil
	}
	user := &domain.User{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		Role:         model.Role,
		Age:          model.Age,
		Gender:       model.Gender,
		Date:         model.Date,
		Shift:        model.Shift,
	}
	if model.ImageKey != nil && *model.ImageKey != "" {
		user.Image = &domain.Image{ObjectKey: *model.ImageKey}
		if model.ImageContentType != nil {
			user.Image.ContentType = *model.ImageContentType
		}
	}

	return user
}

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		BillID:      entity.BillID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		BillID:      model.BillID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	if models == nil {
		return nil
	}
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}
	return res
}
