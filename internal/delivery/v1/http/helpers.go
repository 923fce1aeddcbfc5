package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const notFoundBody = "404 - Not Found"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

func NewMessageResponse(message string) *MessageResponse {
	return &MessageResponse{Message: message}
}

// ToHTTPResponse сопоставляет ошибку слоя usecase с HTTP-кодом и текстом для клиента.
// Внутренние ошибки наружу не раскрываются.
func ToHTTPResponse(err error) (int, string) {
	var notFound *usecase.ProductNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, notFound.Error()
	}

	switch {
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrUserNotFound):
		return http.StatusNotFound, e.ErrUserNotFound.Error()
	case errors.Is(err, e.ErrImageNotFound):
		return http.StatusNotFound, notFoundBody
	case errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized, e.ErrInvalidCredentials.Error()
	case errors.Is(err, e.ErrProductExists):
		return http.StatusConflict, e.ErrProductExists.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

var badRequestErrors = []error{
	e.ErrInsufficientUnits,
	e.ErrUsernameExists,
	e.ErrMissingSignupFields,
	e.ErrNoPurchases,
	e.ErrProductNameRequired,
	e.ErrInvalidQuantity,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrQuantityPrecision,
	e.ErrUnitsPrecision,
	e.ErrInvalidUnits,
	e.ErrInvalidID,
	e.ErrMalformedNumber,
	e.ErrExpectedMultipart,
	e.ErrMissingFields,
	e.ErrStatusBadRequest,
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// decodeJSON читает тело запроса. Любая ошибка разбора, включая нечисловые цены и количества,
// возвращается как e.ErrMalformedNumber либо e.ErrStatusBadRequest.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if strings.Contains(err.Error(), "decimal") || strings.Contains(err.Error(), "can't convert") {
			return e.Wrap(err.Error(), e.ErrMalformedNumber)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	return nil
}

// jsonNumber выводит decimal числом, а не строкой.
func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Date принимает RFC3339, дату вида 2006-01-02, пустую строку или null.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, e.Wrap(s, lastErr)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(err.Error(), e.ErrFileTooLarge)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	return nil
}

// readFile читает загруженный файл целиком и определяет MIME по содержимому.
func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
