package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"factorhub/pkg/platform/middleware/auth"
	"factorhub/pkg/platform/middleware/metadata"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Assets   *AssetHandler
	Registry *RegistryHandler
	Accounts *AccountHandler
	Events   *EventHandler
}

// NewRouter wires all public endpoints. Reads are open; anything that moves
// ownership, money, or registrations requires an authenticated caller.
func NewRouter(h Handlers, validator auth.Validator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/assets/{id}", h.Assets.handleGet)
		r.Get("/assets/{id}/recommended-price", h.Assets.handleRecommendedPrice)
		r.Get("/assets/{id}/events", h.Events.handleByAsset)
		r.Get("/events", h.Events.handleRecent)
		r.Get("/registry/{fingerprint}", h.Registry.handleGet)
		r.Get("/registry/{fingerprint}/verify", h.Registry.handleVerify)
		r.Get("/accounts/{account}/balance", h.Accounts.handleBalance)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(validator, logger))
			r.Post("/assets", h.Assets.handleMint)
			r.Post("/assets/{id}/list", h.Assets.handleList)
			r.Post("/assets/{id}/unlist", h.Assets.handleUnlist)
			r.Post("/assets/{id}/buy", h.Assets.handleBuy)
			r.Post("/assets/{id}/redeem", h.Assets.handleRedeem)
			r.Post("/registry", h.Registry.handleRegister)
			r.Post("/accounts/deposit", h.Accounts.handleDeposit)
		})
	})

	return r
}
