package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/v1/orders/:id/print-jobs", endpointLabel("/v1/orders/42/print-jobs"))
	assert.Equal(t, "/v1/print-jobs/:id/cancel", endpointLabel("/v1/print-jobs/7/cancel"))
	assert.Equal(t, "/v1/files/preview/:id.png", endpointLabel("/v1/files/preview/11.png"))
	assert.Equal(t, "/v1/catalog/materials", endpointLabel("/v1/catalog/materials?locale=en"))
	assert.Equal(t, "/v1/cart/items/:id", endpointLabel("/v1/cart/items/5"))
}
