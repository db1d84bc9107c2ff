package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/http/apierr"
)

// RateLimit limits each client IP to requests per window.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	body, err := json.Marshal(apierr.New(apperr.TooManyRequestsErr))
	if err != nil {
		panic(err)
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			//nolint:errcheck
			w.Write(body)
		}),
	)
}
