package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorhub/internal/domain"
	"factorhub/internal/events"
	"factorhub/internal/funds"
	"factorhub/internal/ledger"
	"factorhub/internal/market"
	"factorhub/internal/pricing"
	"factorhub/internal/registry"
	"factorhub/internal/settlement"
	httptransport "factorhub/internal/transport/http"
	dErrors "factorhub/pkg/domain-errors"
	"factorhub/pkg/platform/middleware/auth"
	"factorhub/pkg/testutil"
)

const signingKey = "test-signing-key"

var fixedNow = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

type noopMetrics struct{}

func (noopMetrics) ListingRecorded()         {}
func (noopMetrics) SaleRecorded(int64)       {}
func (noopMetrics) RedemptionRecorded(int64) {}

type api struct {
	router http.Handler
	funds  *funds.InMemoryLedger
	assets *ledger.Service
	events *events.InMemoryStore
}

func newAPI(t *testing.T) *api {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eventStore := events.NewInMemoryStore()
	emitter := &syncEmitter{store: eventStore}

	assets := ledger.NewService(ledger.NewInMemoryStore(), emitter, ledger.WithClock(fixedNow))
	fundsLedger := funds.NewInMemoryLedger()
	marketSvc := market.NewService(assets, fundsLedger, emitter, noopMetrics{})
	settlementSvc := settlement.NewService(assets, fundsLedger, emitter, noopMetrics{})
	advisor := pricing.NewAdvisor(assets, fixedNow)
	registrySvc := registry.NewService(registry.NewInMemoryStore(), fixedNow)

	router := httptransport.NewRouter(httptransport.Handlers{
		Assets:   httptransport.NewAssetHandler(assets, marketSvc, settlementSvc, advisor),
		Registry: httptransport.NewRegistryHandler(registrySvc, nil),
		Accounts: httptransport.NewAccountHandler(fundsLedger),
		Events:   httptransport.NewEventHandler(eventStore),
	}, auth.NewHMACValidator(signingKey), logger)

	return &api{router: router, funds: fundsLedger, assets: assets, events: eventStore}
}

// syncEmitter appends straight to the store so handler tests can assert on the
// event log without running the worker.
type syncEmitter struct{ store *events.InMemoryStore }

func (e *syncEmitter) Emit(ctx context.Context, event events.Event) {
	_ = e.store.Append(ctx, event)
}

func (a *api) do(t *testing.T, method, path string, body any, caller domain.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+testutil.BearerToken(t, signingKey, caller))
	}
	return testutil.DoRequest(a.router, req)
}

func mintBody(seed string) map[string]any {
	return map[string]any{
		"fingerprint": strings.Repeat("0", 60) + seed,
		"face_value":  10000,
		"maturity_at": fixedNow().Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"risk_score":  15,
		"metadata":    `{"supplier":"Acme Corp"}`,
	}
}

func TestMintEndpoint(t *testing.T) {
	a := newAPI(t)

	t.Run("requires authentication", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "")
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("rejects a bad token", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/assets", mintBody("a001"))
		req.Header.Set("Authorization", "Bearer not-a-token")
		rr := testutil.DoRequest(a.router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("mints and returns the id", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[map[string]uint64](t, rr)
		assert.Equal(t, uint64(1), (*resp)["id"])
	})

	t.Run("duplicate fingerprint conflicts", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeDuplicateFingerprint))
	})

	t.Run("bad maturity format is a 400", func(t *testing.T) {
		body := mintBody("a002")
		body["maturity_at"] = "tomorrow"
		rr := a.do(t, http.MethodPost, "/v1/assets", body, "supplier-acme")
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestGetAssetEndpoint(t *testing.T) {
	a := newAPI(t)
	rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
	testutil.AssertStatus(t, rr, http.StatusCreated)

	t.Run("reads are public", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/assets/1", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "supplier-acme", (*resp)["holder"])
		assert.Equal(t, false, (*resp)["redeemed"])
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/assets/99", nil, "")
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeNotFound))
	})

	t.Run("id zero and garbage are 404s", func(t *testing.T) {
		for _, path := range []string{"/v1/assets/0", "/v1/assets/banana"} {
			rr := a.do(t, http.MethodGet, path, nil, "")
			testutil.AssertStatus(t, rr, http.StatusNotFound)
		}
	})
}

func TestMarketplaceEndpoints(t *testing.T) {
	a := newAPI(t)
	rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
	testutil.AssertStatus(t, rr, http.StatusCreated)

	t.Run("non-holder cannot list", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/list", map[string]any{"price": 9500}, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusForbidden)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeNotOwner))
	})

	t.Run("holder lists at a discount", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/list", map[string]any{"price": 9500}, "supplier-acme")
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("buying without funds is a 402", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/buy", map[string]any{"payment": 9500}, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusPaymentRequired)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeInsufficientFunds))
	})

	t.Run("funded buyer takes ownership", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/accounts/deposit", map[string]any{"amount": 20000}, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = a.do(t, http.MethodPost, "/v1/assets/1/buy", map[string]any{"payment": 9500}, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = a.do(t, http.MethodGet, "/v1/assets/1", nil, "")
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "investor-1", (*resp)["holder"])
	})

	t.Run("buying an unlisted asset conflicts", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/buy", map[string]any{"payment": 9500}, "other")
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeNotListed))
	})

	t.Run("unlist is a 204", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/unlist", nil, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})
}

func TestRedeemEndpoint(t *testing.T) {
	a := newAPI(t)
	rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = a.do(t, http.MethodPost, "/v1/accounts/deposit", map[string]any{"amount": 15000}, "debtor-corp")
	testutil.AssertStatus(t, rr, http.StatusOK)

	t.Run("short payment is a 402", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/redeem", map[string]any{"payment": 9000}, "debtor-corp")
		testutil.AssertStatus(t, rr, http.StatusPaymentRequired)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeInsufficientPayment))
	})

	t.Run("face value payment closes the asset", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/redeem", map[string]any{"payment": 10000}, "debtor-corp")
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = a.do(t, http.MethodGet, "/v1/accounts/supplier-acme/balance", nil, "")
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, float64(10000), (*resp)["balance"])
	})

	t.Run("second redemption conflicts", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/assets/1/redeem", map[string]any{"payment": 10000}, "debtor-corp")
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeAlreadyRedeemed))
	})
}

func TestRecommendedPriceEndpoint(t *testing.T) {
	a := newAPI(t)
	rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = a.do(t, http.MethodGet, "/v1/assets/1/recommended-price", nil, "")
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(9550), (*resp)["recommended_price"])
}

func TestRegistryEndpoints(t *testing.T) {
	a := newAPI(t)
	fp := string(registry.ComputeFingerprint([]byte("invoice body")))

	t.Run("registration requires auth", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/registry", map[string]any{"fingerprint": fp}, "")
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("registers by content hash", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/registry", map[string]any{"content": "invoice body"}, "supplier-acme")
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, fp, (*resp)["fingerprint"])
	})

	t.Run("double registration conflicts", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/registry", map[string]any{"fingerprint": fp}, "other-party")
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("verify and get are public", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/registry/"+fp+"/verify", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		verify := testutil.UnmarshalResponse[map[string]bool](t, rr)
		assert.True(t, (*verify)["registered"])

		rr = a.do(t, http.MethodGet, "/v1/registry/"+fp, nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("unknown fingerprint is a 404", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/registry/"+strings.Repeat("9", 64), nil, "")
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestAccountEndpoints(t *testing.T) {
	a := newAPI(t)

	t.Run("deposit lands on the caller's account", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/accounts/deposit", map[string]any{"amount": 5000}, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "investor-1", (*resp)["account"])
		assert.Equal(t, float64(5000), (*resp)["balance"])
	})

	t.Run("non-positive deposits are rejected", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/v1/accounts/deposit", map[string]any{"amount": 0}, "investor-1")
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeInvalidAmount))
	})

	t.Run("balance of an unknown account is zero", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/accounts/nobody/balance", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, float64(0), (*resp)["balance"])
	})
}

func TestEventEndpoints(t *testing.T) {
	a := newAPI(t)
	rr := a.do(t, http.MethodPost, "/v1/assets", mintBody("a001"), "supplier-acme")
	testutil.AssertStatus(t, rr, http.StatusCreated)
	rr = a.do(t, http.MethodPost, "/v1/assets/1/list", map[string]any{"price": 9500}, "supplier-acme")
	testutil.AssertStatus(t, rr, http.StatusOK)

	t.Run("per-asset log in order", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/assets/1/events", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		log := testutil.UnmarshalResponse[[]events.Event](t, rr)
		require.Len(t, *log, 2)
		assert.Equal(t, events.KindMinted, (*log)[0].Kind)
		assert.Equal(t, events.KindListed, (*log)[1].Kind)
	})

	t.Run("recent log is public", func(t *testing.T) {
		rr := a.do(t, http.MethodGet, "/v1/events", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		log := testutil.UnmarshalResponse[[]events.Event](t, rr)
		assert.Len(t, *log, 2)
	})
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rr := a.do(t, http.MethodGet, "/healthz", nil, "")
	testutil.AssertStatus(t, rr, http.StatusOK)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
