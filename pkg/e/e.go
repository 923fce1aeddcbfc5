package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrStatusBadRequest      = fmt.Errorf("bad request")
	ErrExpectedMultipart     = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields         = fmt.Errorf("missing required fields")
	ErrMissingSignupFields   = fmt.Errorf("Missing required fields: username, password, and role")
	ErrInvalidPrice          = fmt.Errorf("invalid price")
	ErrPricePrecision        = fmt.Errorf("price must have at most 2 decimal places and be below 10000000000")
	ErrQuantityPrecision     = fmt.Errorf("quantity must have at most 3 decimal places and be below 100000000000")
	ErrUnitsPrecision        = fmt.Errorf("units must have at most 3 decimal places and be below 100000000000")
	ErrInvalidUnits          = fmt.Errorf("units must be a non-negative number")
	ErrInvalidQuantity       = fmt.Errorf("quantity must be positive")
	ErrProductNameRequired   = fmt.Errorf("product name is required")
	ErrNoPurchases           = fmt.Errorf("no purchases provided")
	ErrInsufficientUnits     = fmt.Errorf("One or more products have insufficient units")
	ErrUsernameExists        = fmt.Errorf("Username already exists")
	ErrUnsupportedMediaType  = fmt.Errorf("unsupported media type")
	ErrFileTooLarge          = fmt.Errorf("file too large")
	ErrMalformedNumber       = fmt.Errorf("malformed number")
	ErrInvalidID             = fmt.Errorf("invalid id")

	// 401 Unauthorized
	ErrInvalidCredentials = fmt.Errorf("Invalid username or password")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("Product not found")
	ErrUserNotFound    = fmt.Errorf("User not found")
	ErrImageNotFound   = fmt.Errorf("image not found")

	// 409 Conflict
	ErrProductExists = fmt.Errorf("product already exists")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("Internal server error")

	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
