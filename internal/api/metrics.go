package api

import (
	"regexp"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshop_backend_requests_total",
			Help: "Total number of requests sent to the storefront backend",
		},
		[]string{"method", "endpoint", "status"},
	)

	backendRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshop_backend_retries_total",
			Help: "Number of retried backend requests",
		},
		[]string{"method", "endpoint"},
	)
)

var idSegment = regexp.MustCompile(`/\d+(\.png)?(/|$)`)

// endpointLabel убирает идентификаторы и query из пути, чтобы не плодить серии
func endpointLabel(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			path = path[:i]
			break
		}
	}
	// два прохода: соседние сегменты-идентификаторы делят слэш
	for i := 0; i < 2; i++ {
		path = idSegment.ReplaceAllString(path, "/:id$1$2")
	}
	return path
}

func statusLabel(status int) string {
	if status == 0 {
		return "network_error"
	}
	return strconv.Itoa(status)
}
