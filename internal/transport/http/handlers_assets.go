package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"factorhub/internal/domain"
	"factorhub/internal/ledger"
	dErrors "factorhub/pkg/domain-errors"
	"factorhub/pkg/platform/middleware/auth"
)

// AssetService is the ledger surface the transport needs.
type AssetService interface {
	Mint(ctx context.Context, req ledger.MintRequest) (uint64, error)
	Get(ctx context.Context, id uint64) (domain.InvoiceAsset, error)
}

// MarketService is the marketplace surface the transport needs.
type MarketService interface {
	List(ctx context.Context, id uint64, price int64, requester domain.Identity) error
	Unlist(ctx context.Context, id uint64, requester domain.Identity) error
	Buy(ctx context.Context, id uint64, payment int64, buyer domain.Identity) error
}

// SettlementService redeems assets.
type SettlementService interface {
	Redeem(ctx context.Context, id uint64, payment int64, payer domain.Identity) error
}

// PricingAdvisor recommends prices.
type PricingAdvisor interface {
	Recommend(ctx context.Context, id uint64) (int64, error)
}

// AssetHandler serves the asset ledger and marketplace endpoints.
type AssetHandler struct {
	assets     AssetService
	market     MarketService
	settlement SettlementService
	pricing    PricingAdvisor
}

func NewAssetHandler(assets AssetService, market MarketService, settlement SettlementService, pricing PricingAdvisor) *AssetHandler {
	return &AssetHandler{assets: assets, market: market, settlement: settlement, pricing: pricing}
}

type mintRequest struct {
	Fingerprint string `json:"fingerprint"`
	FaceValue   int64  `json:"face_value"`
	MaturityAt  string `json:"maturity_at"`
	RiskScore   int    `json:"risk_score"`
	Metadata    string `json:"metadata"`
}

type assetResponse struct {
	ID          uint64 `json:"id"`
	Fingerprint string `json:"fingerprint"`
	FaceValue   int64  `json:"face_value"`
	MaturityAt  string `json:"maturity_at"`
	Originator  string `json:"originator"`
	Holder      string `json:"holder"`
	Redeemed    bool   `json:"redeemed"`
	ListedPrice int64  `json:"listed_price,omitempty"`
	RiskScore   int    `json:"risk_score"`
	Metadata    string `json:"metadata,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toAssetResponse(a domain.InvoiceAsset) assetResponse {
	return assetResponse{
		ID:          a.ID,
		Fingerprint: string(a.Fingerprint),
		FaceValue:   a.FaceValue,
		MaturityAt:  a.MaturityAt.Format(time.RFC3339),
		Originator:  string(a.Originator),
		Holder:      string(a.Holder),
		Redeemed:    a.Redeemed,
		ListedPrice: a.ListedPrice,
		RiskScore:   a.RiskScore,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AssetHandler) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	maturity, err := time.Parse(time.RFC3339, req.MaturityAt)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "maturity_at must be RFC 3339"))
		return
	}
	id, err := h.assets.Mint(r.Context(), ledger.MintRequest{
		Fingerprint: domain.Fingerprint(req.Fingerprint),
		FaceValue:   req.FaceValue,
		MaturityAt:  maturity,
		RiskScore:   req.RiskScore,
		Metadata:    req.Metadata,
		Requester:   auth.Caller(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *AssetHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := h.assets.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetResponse(asset))
}

type listRequest struct {
	Price int64 `json:"price"`
}

func (h *AssetHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req listRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.market.List(r.Context(), id, req.Price, auth.Caller(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "listed_price": req.Price})
}

func (h *AssetHandler) handleUnlist(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.market.Unlist(r.Context(), id, auth.Caller(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Payment int64 `json:"payment"`
}

func (h *AssetHandler) handleBuy(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	buyer := auth.Caller(r.Context())
	if err := h.market.Buy(r.Context(), id, req.Payment, buyer); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "holder": string(buyer)})
}

func (h *AssetHandler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.settlement.Redeem(r.Context(), id, req.Payment, auth.Caller(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "redeemed": true})
}

func (h *AssetHandler) handleRecommendedPrice(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	price, err := h.pricing.Recommend(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "recommended_price": price})
}

// assetID parses the {id} route parameter. 0 and garbage both come back as
// not found; the ledger reserves 0 as the "no asset" sentinel.
func assetID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, dErrors.New(dErrors.CodeNotFound, "unknown asset")
	}
	return id, nil
}
