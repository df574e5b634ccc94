package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/service"
)

// CartLine - позиция корзины с посчитанной суммой строки
type CartLine struct {
	models.CartItem
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	Items       []CartLine     `json:"items"`
	SubtotalEUR string         `json:"subtotal_eur"`
	DiscountEUR string         `json:"discount_eur"`
	TotalEUR    string         `json:"total_eur"`
	Currency    string         `json:"currency"`
	Coupon      *models.Coupon `json:"coupon"`
}

type CheckoutResponse struct {
	OrderID     int64  `json:"order_id"`
	TotalEUR    string `json:"total_eur"`
	CheckoutURL string `json:"checkout_url"`
}

// LastOrder - откуда страница успешной оплаты берёт номер заказа
type LastOrder interface {
	LastOrderID() int64
}

type CheckoutSuccessResponse struct {
	OrderID   int64  `json:"order_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type CheckoutCancelResponse struct {
	Message string `json:"message"`
	CartURL string `json:"cart_url"`
}

func newCartResponse(cart *models.Cart) CartResponse {
	resp := CartResponse{
		Items:       make([]CartLine, 0, len(cart.Items)),
		SubtotalEUR: models.FormatMoney(cart.SubtotalEUR),
		DiscountEUR: models.FormatMoney(cart.DiscountEUR),
		TotalEUR:    models.FormatMoney(cart.TotalEUR),
		Currency:    cart.Currency,
		Coupon:      cart.Coupon,
	}
	for _, item := range cart.Items {
		resp.Items = append(resp.Items, CartLine{CartItem: item, LineTotal: models.FormatMoney(item.LineSubtotal())})
	}
	return resp
}

// CartHandler обрабатывает запрос GET /api/cart
func CartHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartHandler"
		logger := log.With(slog.String("op", op))

		cart, err := carts.Get(r.Context())
		if err != nil {
			logger.Error("failed to load cart", slog.Any("error", err))
			writeError(w, "load cart", err)
			return
		}

		writeJSON(w, logger, newCartResponse(cart))
	}
}

// CheckoutHandler обрабатывает запрос POST /api/cart/checkout
func CheckoutHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		cart, err := carts.Get(r.Context())
		if err != nil {
			writeError(w, "load cart", err)
			return
		}

		res, err := carts.Checkout(r.Context(), cart)
		if err != nil {
			logger.Error("checkout failed", slog.Any("error", err))
			writeError(w, "check out", err)
			return
		}

		writeJSON(w, logger, CheckoutResponse{
			OrderID:     res.Order.OrderID,
			TotalEUR:    models.FormatMoney(res.Order.TotalEUR),
			CheckoutURL: res.Payment.CheckoutURL,
		})
	}
}

// CheckoutSuccessHandler обрабатывает запрос GET /api/checkout/success
func CheckoutSuccessHandler(log *slog.Logger, last LastOrder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.CheckoutSuccessHandler"))
		writeJSON(w, logger, CheckoutSuccessResponse{
			OrderID:   last.LastOrderID(),
			SessionID: r.URL.Query().Get("session_id"),
		})
	}
}

// CheckoutCancelHandler обрабатывает запрос GET /api/checkout/cancel.
// Корзина не трогается, оплату можно повторить.
func CheckoutCancelHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.CheckoutCancelHandler"))
		logger.Info("payment canceled by user")
		writeJSON(w, logger, CheckoutCancelResponse{
			Message: "payment was not completed, you can retry from the cart",
			CartURL: "/api/cart",
		})
	}
}
