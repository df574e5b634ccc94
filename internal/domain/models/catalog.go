package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Material - материал печати из каталога
type Material struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Label - "PLA - black"
func (m Material) Label() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{m.Name, m.Color} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

// InfillPresets - допустимые варианты заполнения
var InfillPresets = []string{"15% grid", "20% gyroid", "25% cubic", "30% cubic", "40% gyroid"}

// QuoteRequest - конфигурация печати для расчёта цены
type QuoteRequest struct {
	ModelID     int64   `json:"model_id" validate:"required,gt=0"`
	MaterialID  int64   `json:"material_id" validate:"required,gt=0"`
	LayerHeight float64 `json:"layer_height" validate:"gt=0,lte=1"`
	Infill      string  `json:"infill" validate:"required,infill"`
	Qty         int     `json:"qty" validate:"required,min=1"`
}

// DefaultQuoteRequest - значения формы по умолчанию
func DefaultQuoteRequest(modelID int64) QuoteRequest {
	return QuoteRequest{ModelID: modelID, LayerHeight: 0.2, Infill: "20% gyroid", Qty: 1}
}

type QuoteBreakdown struct {
	Qty          int                        `json:"qty"`
	UnitPriceEUR decimal.Decimal            `json:"unit_price_eur"`
	TotalEUR     decimal.Decimal            `json:"total_eur"`
	EstTimeMin   int                        `json:"est_time_min"`
	EstFilamentG float64                    `json:"est_filament_g"`
	Costs        map[string]decimal.Decimal `json:"costs,omitempty"`
}

// Quote - оценённая конфигурация с ограниченным сроком действия
type Quote struct {
	ID              int64             `json:"id"`
	PriceEUR        decimal.Decimal   `json:"price_eur"`
	Settings        map[string]any    `json:"settings,omitempty"`
	TTLExpiresAt    *Time             `json:"ttl_expires_at,omitempty"`
	Breakdown       QuoteBreakdown    `json:"breakdown"`
	BreakdownLabels map[string]string `json:"breakdown_labels,omitempty"`
}

// TTLLeft - сколько ещё действует котировка; ok=false если срок не задан
func (q *Quote) TTLLeft(now time.Time) (left time.Duration, ok bool) {
	if q == nil || q.TTLExpiresAt == nil || q.TTLExpiresAt.IsZero() {
		return 0, false
	}
	left = q.TTLExpiresAt.Sub(now)
	if left < 0 {
		left = 0
	}
	return left.Truncate(time.Second), true
}

// Expired - срок задан и истёк
func (q *Quote) Expired(now time.Time) bool {
	left, ok := q.TTLLeft(now)
	return ok && left <= 0
}
