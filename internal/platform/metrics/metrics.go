package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AssetsMinted  prometheus.Counter
	Listings      prometheus.Counter
	Sales         prometheus.Counter
	SaleVolume    prometheus.Counter
	Redemptions   prometheus.Counter
	RedeemedValue prometheus.Counter
	Registrations prometheus.Counter
	EventsDropped prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AssetsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_assets_minted_total",
			Help: "Total number of invoice assets minted",
		}),
		Listings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_listings_total",
			Help: "Total number of marketplace listings created",
		}),
		Sales: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_sales_total",
			Help: "Total number of completed purchases",
		}),
		SaleVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_sale_volume_total",
			Help: "Sum of sale prices settled, in minor currency units",
		}),
		Redemptions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_redemptions_total",
			Help: "Total number of assets redeemed",
		}),
		RedeemedValue: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_redeemed_value_total",
			Help: "Sum of face values paid out at redemption, in minor currency units",
		}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_registry_registrations_total",
			Help: "Total number of proof-of-existence registrations",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "factorhub_events_dropped_total",
			Help: "Notification events dropped because the buffer was full",
		}),
	}
}

// MintRecorded increments the mint counter by 1.
func (m *Metrics) MintRecorded() { m.AssetsMinted.Inc() }

// ListingRecorded increments the listing counter by 1.
func (m *Metrics) ListingRecorded() { m.Listings.Inc() }

// SaleRecorded counts a completed purchase and its settled price.
func (m *Metrics) SaleRecorded(price int64) {
	m.Sales.Inc()
	m.SaleVolume.Add(float64(price))
}

// RedemptionRecorded counts a redemption and its payout.
func (m *Metrics) RedemptionRecorded(faceValue int64) {
	m.Redemptions.Inc()
	m.RedeemedValue.Add(float64(faceValue))
}

// RegistrationRecorded increments the registry counter by 1.
func (m *Metrics) RegistrationRecorded() { m.Registrations.Inc() }

// EventDropped increments the dropped-events counter by 1.
func (m *Metrics) EventDropped() { m.EventsDropped.Inc() }
