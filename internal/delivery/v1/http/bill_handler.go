package http

import (
	"net/http"

	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
)

const maxBillBodySize = 1 << 20

type BillHandler struct {
	billUsecase usecase.BillUC
	logger      logger.Logger
}

func NewBillHandler(billUsecase usecase.BillUC, logger logger.Logger) *BillHandler {
	return &BillHandler{billUsecase: billUsecase, logger: logger}
}

// createBill
//
//	@Summary		Проведение чека
//	@Description	Списывает остатки по всем строкам чека и сохраняет чек. При любой ошибке остатки не меняются
//	@Tags			bills
//	@Accept			json
//	@Produce		json
//	@Param			bill	body		CreateBillRequest	true	"Строки чека"
//	@Success		200		{object}	MessageResponse		"Чек сохранён"
//	@Failure		400		{object}	ErrorResponse		"Не хватает остатка или ошибка валидации"
//	@Failure		404		{object}	ErrorResponse		"Товар не найден"
//	@Failure		500		{object}	MessageResponse		"Внутренняя ошибка"
//	@Router			/bill [post]
func (b *BillHandler) createBill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBillBodySize)

	var req CreateBillRequest
	if err := decodeJSON(r, &req); err != nil {
		b.logger.Warnf("%d bill body rejected: %v", http.StatusInternalServerError, err)
		WriteSuccess(w, http.StatusInternalServerError, NewMessageResponse(e.ErrInternalServerError.Error()))
		return
	}

	// Отказы и сбои уже залогированы в BillUseCase
	if _, err := b.billUsecase.CreateBill(r.Context(), usecase.NewCreateBillReq(req.toPurchases())); err != nil {
		code, msg := ToHTTPResponse(err)
		if code == http.StatusInternalServerError {
			WriteSuccess(w, code, NewMessageResponse(msg))
			return
		}
		WriteSuccess(w, code, NewErrorResponse(msg))
		return
	}

	WriteSuccess(w, http.StatusOK, NewMessageResponse("Data stored successfully"))
}
