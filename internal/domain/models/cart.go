package models

import "github.com/shopspring/decimal"

const (
	CartItemPrint = "print"
	CartItemSKU   = "sku"
)

// Cart - корзина. Суммы считает бэкенд, клиент их только показывает.
type Cart struct {
	ID          *int64          `json:"id"`
	Items       []CartItem      `json:"items"`
	SubtotalEUR decimal.Decimal `json:"subtotal_eur"`
	DiscountEUR decimal.Decimal `json:"discount_eur"`
	TotalEUR    decimal.Decimal `json:"total_eur"`
	Currency    string          `json:"currency"`
	Coupon      *Coupon         `json:"coupon"`
}

type Coupon struct {
	Code      string          `json:"code"`
	AmountEUR decimal.Decimal `json:"amount_eur"`
}

// CartItem - позиция корзины, созданная из котировки
type CartItem struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	QuoteID   int64           `json:"quote_id,omitempty"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Material  *Material       `json:"material,omitempty"`
	Title     string          `json:"title,omitempty"`
}

// LineSubtotal - сумма по позиции: цена за штуку * количество
func (i CartItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Empty - в корзине нет позиций
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// Item ищет позицию по id
func (c *Cart) Item(id int64) (*CartItem, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// Clone - глубокая копия для оптимистичных правок
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	if c.Coupon != nil {
		coupon := *c.Coupon
		cp.Coupon = &coupon
	}
	return &cp
}
