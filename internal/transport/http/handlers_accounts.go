package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"factorhub/internal/domain"
	"factorhub/internal/events"
	"factorhub/internal/funds"
	dErrors "factorhub/pkg/domain-errors"
	"factorhub/pkg/platform/middleware/auth"
)

// AccountHandler serves funds deposits and balance lookups. Deposits always
// land on the caller's own account.
type AccountHandler struct {
	funds funds.Ledger
}

func NewAccountHandler(ledger funds.Ledger) *AccountHandler {
	return &AccountHandler{funds: ledger}
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

func (h *AccountHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, dErrors.New(dErrors.CodeInvalidAmount, "deposit must be positive"))
		return
	}
	caller := auth.Caller(r.Context())
	if err := h.funds.Deposit(r.Context(), caller, req.Amount); err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "deposit", err))
		return
	}
	balance, err := h.funds.Balance(r.Context(), caller)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "balance", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": string(caller), "balance": balance})
}

func (h *AccountHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	account := domain.Identity(chi.URLParam(r, "account"))
	balance, err := h.funds.Balance(r.Context(), account)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "balance", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": string(account), "balance": balance})
}

// EventHandler exposes the read side of the notification log.
type EventHandler struct {
	store events.Store
}

func NewEventHandler(store events.Store) *EventHandler {
	return &EventHandler{store: store}
}

func (h *EventHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	log, err := h.store.ListRecent(r.Context(), 100)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "list events", err))
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *EventHandler) handleByAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	log, err := h.store.ListByAsset(r.Context(), id)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "list events", err))
		return
	}
	writeJSON(w, http.StatusOK, log)
}
