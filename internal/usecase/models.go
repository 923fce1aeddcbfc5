package usecase

import (
	"encoding/json"
	"io"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BILL USECASE

// CreateBillReq — запрос на проведение чека.
type CreateBillReq struct {
	Purchases []domain.Purchase
}

// CreateBillRes — результат проведения чека.
type CreateBillRes struct {
	BillID int64
	Total  decimal.Decimal
}

// PRODUCT USECASE

type AddProductReq struct {
	Name  string
	Price decimal.Decimal
	Type  string
	Units decimal.Decimal
}

type UpdateProductReq struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Type  string
	Units decimal.Decimal
	Date  *time.Time // nil — дата создания не меняется
}

// REPOSITORIES

type UpdateProductRes struct {
	Product      *domain.Product
	PreviousName string
}

func NewUpdateProductRes(product *domain.Product, previousName string) *UpdateProductRes {
	return &UpdateProductRes{
		Product:      product,
		PreviousName: previousName,
	}
}

// USER USECASE

type SignupReq struct {
	Username string
	Password string
	Role     string
	Age      string
	Gender   string
	Date     *time.Time
	Shift    string
	Image    *UserImage
}

// UserImage — изображение профиля из multipart/form-data.
type UserImage struct {
	Data     []byte
	MimeType string
	Name     string
}

type LoginReq struct {
	Username string
	Password string
}

// UserInfo — данные пользователя для внешнего использования (без хэша пароля).
type UserInfo struct {
	ID       int64
	Username string
	Role     string
	Image    *string // URL вида /uploads/<key>
	Gender   string
	Age      string
	Date     time.Time
	Shift    string
}

// INFRASTRUCTURE

type UploadImagesReq struct {
	Prefix string
	Images []UserImage
}

type UploadImagesRes struct {
	ImagesKeys []string
}

// ImageObject — открытый на чтение объект из S3. Вызывающий обязан закрыть Body.
type ImageObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	BillCreated OutboxEventType = "bill.created"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	BillID      int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// BillCreatedPayload — тело события bill.created.
type BillCreatedPayload struct {
	EventID   string            `json:"event_id"`
	BillID    int64             `json:"bill_id"`
	Total     decimal.Decimal   `json:"total"`
	Purchases []PurchasePayload `json:"purchases"`
	CreatedAt time.Time         `json:"created_at"`
}

type PurchasePayload struct {
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Date        time.Time       `json:"date"`
}

// MAPPERS

func NewCreateBillReq(purchases []domain.Purchase) *CreateBillReq {
	return &CreateBillReq{Purchases: purchases}
}

func NewCreateBillRes(billID int64, total decimal.Decimal) *CreateBillRes {
	return &CreateBillRes{BillID: billID, Total: total}
}

func NewUploadImagesReq(prefix string, images []UserImage) *UploadImagesReq {
	return &UploadImagesReq{Prefix: prefix, Images: images}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{ImagesKeys: imagesKeys}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, Payload: payload}
}

// NewBillCreatedEvent собирает outbox-событие для сохранённого чека.
func NewBillCreatedEvent(bill *domain.Bill, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	purchases := make([]PurchasePayload, 0, len(bill.Purchases))
	for _, p := range bill.Purchases {
		purchases = append(purchases, PurchasePayload{
			ProductName: p.ProductName,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Date:        p.Date,
		})
	}

	payload, err := json.Marshal(BillCreatedPayload{
		EventID:   eventID,
		BillID:    bill.ID,
		Total:     bill.Total,
		Purchases: purchases,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: BillCreated,
		BillID:    bill.ID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: now,
	}, nil
}

// ToUserInfo превращает пользователя в DTO; imageURL строит ссылку на изображение.
func ToUserInfo(u *domain.User) UserInfo {
	info := UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Gender:   u.Gender,
		Age:      u.Age,
		Date:     u.Date,
		Shift:    u.Shift,
	}
	if u.Image != nil && u.Image.ObjectKey != "" {
		url := ImageURL(u.Image.ObjectKey)
		info.Image = &url
	}

	return info
}

// ImageURL — путь, по которому HTTP-слой отдаёт изображение.
func ImageURL(key string) string {
	return "/uploads/" + key
}
