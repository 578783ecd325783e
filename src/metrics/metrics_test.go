package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestCollectorsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.MessageDecoded("TickPrice")
	c.MessageDecoded("TickPrice")
	c.DuplicateTick("bid")
	c.PeerError(true)
	c.SetActiveSubscriptions(3)

	cases := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"twsclient_messages_decoded_total", map[string]string{"tag": "TickPrice"}, 2},
		{"twsclient_duplicate_ticks_total", map[string]string{"side": "bid"}, 1},
		{"twsclient_peer_errors_total", map[string]string{"fatal": "true"}, 1},
		{"twsclient_active_subscriptions", nil, 3},
	}
	for _, tc := range cases {
		if got := counterValue(t, reg, tc.name, tc.labels); got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNilCollectorsAreSafe(t *testing.T) {
	var c *Collectors
	c.MessageDecoded("x")
	c.Disconnect()
	c.VolumeMiss()
	c.SetPendingCompletions(1)
}
