package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxProductBodySize = 1 << 20

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// addProduct
//
//	@Summary		Добавление товара
//	@Description	Создаёт товар на складе. Имя товара уникально
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		ProductRequest	true	"Товар"
//	@Success		200		{object}	MessageResponse	"Товар добавлен"
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409		{object}	ErrorResponse	"Товар с таким именем уже есть"
//	@Failure		500		{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProductBodySize)

	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		p.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.AddProduct(r.Context(), &usecase.AddProductReq{
		Name:  req.ProductName,
		Price: req.Price,
		Type:  req.Type,
		Units: req.Units,
	})
	if err != nil {
		p.writeUCError(w, err)
		return
	}

	p.logger.Infof("product %q added, id=%d", product.Name, product.ID)
	WriteSuccess(w, http.StatusOK, NewMessageResponse("Product added successfully"))
}

// listProducts
//
//	@Summary	Список товаров
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	ProductsResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUsecase.ListProducts(r.Context())
	if err != nil {
		p.writeUCError(w, err)
		return
	}

	res := ProductsResponse{Products: make([]ProductResponse, 0, len(products))}
	for i := range products {
		res.Products = append(res.Products, toProductResponse(&products[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Description	Полностью перезаписывает поля товара. Пустая дата оставляет дату создания без изменений
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"ID товара"
//	@Param			product	body		ProductRequest			true	"Новые значения"
//	@Success		200		{object}	UpdateProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"Товар не найден"
//	@Failure		409		{object}	ErrorResponse	"Имя занято другим товаром"
//	@Failure		500		{object}	ErrorResponse
//	@Router			/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.Wrap(chi.URLParam(r, "id"), e.ErrInvalidID))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProductBodySize)

	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		p.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), &usecase.UpdateProductReq{
		ID:    id,
		Name:  req.ProductName,
		Price: req.Price,
		Type:  req.Type,
		Units: req.Units,
		Date:  req.Date.Ptr(),
	})
	if err != nil {
		p.writeUCError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, UpdateProductResponse{
		Message:        "Product updated successfully",
		UpdatedProduct: toProductResponse(product),
	})
}

// getSuggestions
//
//	@Summary	Имена всех товаров
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	SuggestionsResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/products/suggestions [get]
func (p *ProductHandler) getSuggestions(w http.ResponseWriter, r *http.Request) {
	names, err := p.productUsecase.GetSuggestions(r.Context())
	if err != nil {
		p.writeUCError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	WriteSuccess(w, http.StatusOK, SuggestionsResponse{ProductNames: names})
}

// getPrice
//
//	@Summary	Цена товара по имени
//	@Tags		products
//	@Produce	json
//	@Param		productName	query		string	true	"Имя товара"
//	@Success	200			{object}	PriceResponse
//	@Failure	404			{object}	ErrorResponse	"Товар не найден"
//	@Failure	500			{object}	ErrorResponse
//	@Router		/products/price [get]
func (p *ProductHandler) getPrice(w http.ResponseWriter, r *http.Request) {
	price, err := p.productUsecase.GetPrice(r.Context(), r.URL.Query().Get("productName"))
	if err != nil {
		p.writeUCError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, PriceResponse{Price: jsonNumber(price)})
}

func (p *ProductHandler) writeUCError(w http.ResponseWriter, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		p.logger.Errorf(err, "product request failed")
	} else {
		p.logger.Warnf("%d %s", code, err.Error())
	}
	WriteError(w, err)
}
