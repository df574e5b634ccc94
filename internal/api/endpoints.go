package api

import (
	"fmt"
	"net/url"
)

const (
	PathLogin = "/v1/auth/login"
	PathMe    = "/v1/auth/me"

	PathPresignUpload  = "/v1/files/presign-upload"
	PathUploadComplete = "/v1/files/complete"

	PathQuotes = "/v1/quotes"

	PathCart         = "/v1/cart"
	PathCartItems    = "/v1/cart/items"
	PathApplyCoupon  = "/v1/cart/apply-coupon"
	PathRemoveCoupon = "/v1/cart/coupon"

	PathOrders           = "/v1/orders"
	PathCheckoutFromCart = "/v1/orders/checkout_from_cart"
	PathPaymentCheckout  = "/v1/payments/checkout"

	PathPrintJobs = "/v1/print-jobs"
)

func WithLocale(path, locale string) string {
	return path + "?locale=" + url.QueryEscape(locale)
}

func PreviewPNG(modelID int64) string {
	return fmt.Sprintf("/v1/files/preview/%d.png", modelID)
}

func Materials(locale string) string {
	return WithLocale("/v1/catalog/materials", locale)
}

func CartItem(itemID int64) string {
	return fmt.Sprintf("%s/%d", PathCartItems, itemID)
}

func Order(id int64) string {
	return fmt.Sprintf("%s/%d", PathOrders, id)
}

func OrderJobs(id int64) string {
	return fmt.Sprintf("%s/%d/print-jobs", PathOrders, id)
}

// JobAction - переход задачи: preflight, start, pause, resume, cancel
func JobAction(jobID int64, action string) string {
	return fmt.Sprintf("%s/%d/%s", PathPrintJobs, jobID, action)
}
