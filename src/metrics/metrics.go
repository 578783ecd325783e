// Package metrics holds the prometheus collectors shared by the client, the
// aggregation engine and the monitoring server. Every method is safe on a nil
// *Collectors so components can run without instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "twsclient"

// -----------------------------------------------------------------------------

type Collectors struct {
	messagesDecoded      *prometheus.CounterVec
	requestsSent         *prometheus.CounterVec
	decodeErrors         prometheus.Counter
	disconnects          prometheus.Counter
	peerErrors           *prometheus.CounterVec
	marketDataEvents     *prometheus.CounterVec
	duplicateTicks       *prometheus.CounterVec
	volumeMisses         prometheus.Counter
	volumeRegressions    prometheus.Counter
	syntheticTrades      prometheus.Counter
	unknownSubscriptions prometheus.Counter
	activeSubscriptions  prometheus.Gauge
	pendingCompletions   prometheus.Gauge
}

// -----------------------------------------------------------------------------

// New builds the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		messagesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_decoded_total",
			Help:      "Inbound messages decoded, by message tag",
		}, []string{"tag"}),
		requestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_sent_total",
			Help:      "Outbound requests written, by request tag",
		}, []string{"tag"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Inbound messages that could not be decoded",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Sessions torn down",
		}),
		peerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_errors_total",
			Help:      "Errors reported by the peer",
		}, []string{"fatal"}),
		marketDataEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "market_data_events_total",
			Help:      "Snapshot mutations emitted by the aggregation engine, by tick",
		}, []string{"tick"}),
		duplicateTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_ticks_total",
			Help:      "Size ticks suppressed as duplicates, by side",
		}, []string{"side"}),
		volumeMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "volume_misses_total",
			Help:      "Reported volume above synthetic volume",
		}),
		volumeRegressions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "volume_regressions_total",
			Help:      "Reported volume below synthetic volume, ignored",
		}),
		syntheticTrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthetic_trades_total",
			Help:      "Trades generated to close a volume gap",
		}),
		unknownSubscriptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_subscription_ticks_total",
			Help:      "Ticks dropped because no subscription matched the request id",
		}),
		activeSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Market data subscriptions currently tracked",
		}),
		pendingCompletions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_completions",
			Help:      "One-shot requests waiting for their reply",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.messagesDecoded, c.requestsSent, c.decodeErrors, c.disconnects, c.peerErrors,
			c.marketDataEvents, c.duplicateTicks, c.volumeMisses, c.volumeRegressions,
			c.syntheticTrades, c.unknownSubscriptions, c.activeSubscriptions, c.pendingCompletions,
		)
	}
	return c
}

// -----------------------------------------------------------------------------
// Client side
// -----------------------------------------------------------------------------

func (c *Collectors) MessageDecoded(tag string) {
	if c != nil {
		c.messagesDecoded.WithLabelValues(tag).Inc()
	}
}

func (c *Collectors) RequestSent(tag string) {
	if c != nil {
		c.requestsSent.WithLabelValues(tag).Inc()
	}
}

func (c *Collectors) DecodeError() {
	if c != nil {
		c.decodeErrors.Inc()
	}
}

func (c *Collectors) Disconnect() {
	if c != nil {
		c.disconnects.Inc()
	}
}

func (c *Collectors) PeerError(fatal bool) {
	if c == nil {
		return
	}
	label := "false"
	if fatal {
		label = "true"
	}
	c.peerErrors.WithLabelValues(label).Inc()
}

func (c *Collectors) SetPendingCompletions(n int) {
	if c != nil {
		c.pendingCompletions.Set(float64(n))
	}
}

// -----------------------------------------------------------------------------
// Aggregation engine
// -----------------------------------------------------------------------------

func (c *Collectors) MarketDataEvent(tick string) {
	if c != nil {
		c.marketDataEvents.WithLabelValues(tick).Inc()
	}
}

func (c *Collectors) DuplicateTick(side string) {
	if c != nil {
		c.duplicateTicks.WithLabelValues(side).Inc()
	}
}

func (c *Collectors) VolumeMiss() {
	if c != nil {
		c.volumeMisses.Inc()
	}
}

func (c *Collectors) VolumeRegression() {
	if c != nil {
		c.volumeRegressions.Inc()
	}
}

func (c *Collectors) SyntheticTrade() {
	if c != nil {
		c.syntheticTrades.Inc()
	}
}

func (c *Collectors) UnknownSubscription() {
	if c != nil {
		c.unknownSubscriptions.Inc()
	}
}

func (c *Collectors) SetActiveSubscriptions(n int) {
	if c != nil {
		c.activeSubscriptions.Set(float64(n))
	}
}
