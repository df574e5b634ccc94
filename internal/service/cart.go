package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/session"
)

type addItemRequest struct {
	Type    string `json:"type"`
	QuoteID int64  `json:"quote_id"`
	Qty     int    `json:"qty"`
}

type qtyRequest struct {
	Qty int `json:"qty"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

type paymentRequest struct {
	OrderID int64 `json:"order_id"`
}

// Checkout - созданный заказ и сессия оплаты для него
type Checkout struct {
	Order   models.CheckoutResult
	Payment models.PaymentSession
}

type CartService interface {
	Get(ctx context.Context) (*models.Cart, error)
	AddQuote(ctx context.Context, quote *models.Quote, qty int) error
	UpdateQty(ctx context.Context, cart *models.Cart, itemID int64, qty int) (*models.Cart, error)
	Remove(ctx context.Context, itemID int64) error
	ApplyCoupon(ctx context.Context, code string) (*models.Cart, error)
	RemoveCoupon(ctx context.Context) (*models.Cart, error)
	Checkout(ctx context.Context, cart *models.Cart) (*Checkout, error)
}

type cartService struct {
	log     *slog.Logger
	backend Backend
	sess    *session.Session
	now     func() time.Time
}

func NewCartService(log *slog.Logger, backend Backend, sess *session.Session) CartService {
	return &cartService{
		log:     log,
		backend: backend,
		sess:    sess,
		now:     time.Now,
	}
}

func (s *cartService) Get(ctx context.Context) (*models.Cart, error) {
	const op = "service.CartService.Get"

	var cart models.Cart
	if err := s.backend.Get(ctx, api.WithLocale(api.PathCart, s.sess.Locale()), &cart); err != nil {
		s.log.Error("failed to load cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cart, nil
}

// AddQuote кладёт котировку в корзину, просроченную не пускаем
func (s *cartService) AddQuote(ctx context.Context, quote *models.Quote, qty int) error {
	const op = "service.CartService.AddQuote"

	if quote == nil || quote.ID <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuote)
	}
	if qty < 1 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQty)
	}
	if quote.Expired(s.now()) {
		return fmt.Errorf("%s: %w", op, ErrQuoteExpired)
	}

	req := addItemRequest{Type: models.CartItemPrint, QuoteID: quote.ID, Qty: qty}
	if err := s.backend.Post(ctx, api.PathCartItems, req, nil); err != nil {
		s.log.Error("failed to add quote to cart", slog.String("op", op), slog.Int64("quoteID", quote.ID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateQty меняет количество сразу в копии корзины и отправляет PATCH.
// При ошибке возвращается исходная корзина вместе с ошибкой.
func (s *cartService) UpdateQty(ctx context.Context, cart *models.Cart, itemID int64, qty int) (*models.Cart, error) {
	const op = "service.CartService.UpdateQty"
	logger := s.log.With(slog.String("op", op), slog.Int64("itemID", itemID), slog.Int("qty", qty))

	if qty < 1 {
		return cart, fmt.Errorf("%s: %w", op, ErrInvalidQty)
	}

	optimistic := cart.Clone()
	item, ok := optimistic.Item(itemID)
	if !ok {
		return cart, fmt.Errorf("%s: %w", op, ErrItemNotFound)
	}
	item.Qty = qty
	item.Subtotal = item.LineSubtotal()

	var updated models.Cart
	if err := s.backend.Patch(ctx, api.CartItem(itemID), qtyRequest{Qty: qty}, &updated); err != nil {
		logger.Warn("qty update failed, rolling back", slog.Any("error", err))
		return cart, fmt.Errorf("%s: %w", op, err)
	}

	if len(updated.Items) > 0 {
		return &updated, nil
	}
	return optimistic, nil
}

func (s *cartService) Remove(ctx context.Context, itemID int64) error {
	const op = "service.CartService.Remove"

	if err := s.backend.Delete(ctx, api.CartItem(itemID), nil); err != nil {
		s.log.Error("failed to remove cart item", slog.String("op", op), slog.Int64("itemID", itemID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *cartService) ApplyCoupon(ctx context.Context, code string) (*models.Cart, error) {
	const op = "service.CartService.ApplyCoupon"

	req := couponRequest{Code: code}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: coupon code is required: %w", op, err)
	}
	if err := s.backend.Post(ctx, api.PathApplyCoupon, req, nil); err != nil {
		s.log.Warn("coupon rejected", slog.String("op", op), slog.String("code", code), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx)
}

func (s *cartService) RemoveCoupon(ctx context.Context) (*models.Cart, error) {
	const op = "service.CartService.RemoveCoupon"

	if err := s.backend.Delete(ctx, api.PathRemoveCoupon, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx)
}

// Checkout создаёт заказ из корзины и сессию оплаты.
// Пустая корзина отсекается без запросов.
func (s *cartService) Checkout(ctx context.Context, cart *models.Cart) (*Checkout, error) {
	const op = "service.CartService.Checkout"
	logger := s.log.With(slog.String("op", op))

	if cart.Empty() {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	var order models.CheckoutResult
	if err := s.backend.Post(ctx, api.PathCheckoutFromCart, struct{}{}, &order); err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: create order: %w", op, err)
	}
	s.sess.SetLastOrderID(order.OrderID)
	logger = logger.With(slog.Int64("orderID", order.OrderID))

	var payment models.PaymentSession
	if err := s.backend.Post(ctx, api.PathPaymentCheckout, paymentRequest{OrderID: order.OrderID}, &payment); err != nil {
		logger.Error("failed to create payment session", slog.Any("error", err))
		return nil, fmt.Errorf("%s: create payment session: %w", op, err)
	}

	logger.Info("checkout started", slog.String("total", models.FormatMoney(order.TotalEUR)))
	return &Checkout{Order: order, Payment: payment}, nil
}
