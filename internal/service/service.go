package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/printshop/internal/domain/models"
)

// Ошибки проверки до отправки запроса
var (
	ErrMissingModel    = errors.New("model id is required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnsupportedFile = errors.New("unsupported model file, expected .stl, .obj, .gltf or .glb")
	ErrInvalidQuote    = errors.New("invalid quote request")
	ErrQuoteExpired    = errors.New("quote has expired, request a new price")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQty      = errors.New("quantity must be at least 1")
)

// Backend - то, что сервисам нужно от api.Client
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// infill - только из списка пресетов
	_ = v.RegisterValidation("infill", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, preset := range models.InfillPresets {
			if preset == value {
				return true
			}
		}
		return false
	})
	return v
}
