package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
)

const maxJSONBytes = 1 << 20

// errResponseEncode marks a failure after the status line has gone out;
// such errors are logged and never turned into a second response.
var errResponseEncode = errors.New("encode response")

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("%w: %w", errResponseEncode, err)
	}
	return nil
}

// decodeJSON decodes a small JSON request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ValidationErr.WithMsg("request body is empty")
		}
		return apperr.ValidationErr.WithMsg("malformed request body").WrapParent(err)
	}
	return nil
}
