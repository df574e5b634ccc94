package models

import "github.com/shopspring/decimal"

// FormatMoney - сумма в евро с двумя знаками после запятой, как её показывает магазин
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
