// Package http provides the JSON/HTTP surface over the ledger core and
// the auth gate. Handlers carry no business logic: they decode and
// validate payloads, call services and translate results.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/festipay/festipay/internal/models"
	"github.com/festipay/festipay/internal/service"
)

// validate checks request DTO constraints.
var validate = validator.New()

// decodeValid decodes the JSON body into dst and validates it. On
// failure it writes a 400 response and returns false.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult maps an operation result onto the wire: successes are 200,
// policy refusals 403, every other failure 422. The Result body itself
// is the contract; its message is surfaced verbatim.
func writeResult(w http.ResponseWriter, res models.Result) {
	switch {
	case res.OK:
		writeJSON(w, http.StatusOK, res)
	case res.Message == service.MsgNotPermitted:
		writeJSON(w, http.StatusForbidden, res)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, res)
	}
}
