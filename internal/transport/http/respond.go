package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "factorhub/pkg/domain-errors"
)

// statusOf maps domain error codes onto HTTP statuses. The transport never
// invents its own failure taxonomy; it only translates.
func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeNotOwner:
		return http.StatusForbidden
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeDuplicateFingerprint, dErrors.CodeConflict,
		dErrors.CodeAlreadyRedeemed, dErrors.CodeNotListed, dErrors.CodeSelfPurchase:
		return http.StatusConflict
	case dErrors.CodeInsufficientPayment, dErrors.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case dErrors.CodeInvalidAmount, dErrors.CodeInvalidMaturity, dErrors.CodeInvalidPrice,
		dErrors.CodeInvalidInput, dErrors.CodeMaturityInPast:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError centralizes domain error translation to HTTP responses so every
// handler returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	var de *dErrors.Error
	if errors.As(err, &de) && code != dErrors.CodeInternal {
		body["message"] = de.Message
	}
	writeJSON(w, statusOf(code), body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON parses the request body into dst, rejecting malformed payloads.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
