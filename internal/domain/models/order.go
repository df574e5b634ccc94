package models

import "github.com/shopspring/decimal"

// OrderStatus - статус заказа. Жизненным циклом владеет бэкенд,
// неизвестные значения пропускаются как есть.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderPaid           OrderStatus = "paid"
	OrderFulfilled      OrderStatus = "fulfilled"
)

// Order представляет заказ покупателя
type Order struct {
	ID        int64           `json:"id"`
	Status    OrderStatus     `json:"status"`
	TotalEUR  decimal.Decimal `json:"total_eur"`
	CreatedAt Time            `json:"created_at"`
	// заполняются только в списке заказов
	JobsTotal int `json:"jobs_total,omitempty"`
	JobsDone  int `json:"jobs_done,omitempty"`
}

// Equal - структурное сравнение, суммы сравниваются по значению
func (o *Order) Equal(other *Order) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ID == other.ID &&
		o.Status == other.Status &&
		o.TotalEUR.Equal(other.TotalEUR) &&
		o.CreatedAt.Equal(other.CreatedAt) &&
		o.JobsTotal == other.JobsTotal &&
		o.JobsDone == other.JobsDone
}

// CheckoutResult - ответ на создание заказа из корзины
type CheckoutResult struct {
	OrderID  int64           `json:"order_id"`
	TotalEUR decimal.Decimal `json:"total_eur"`
	Status   OrderStatus     `json:"status"`
}

// PaymentSession - сессия оплаты у платёжного провайдера
type PaymentSession struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}
