package metric

import "github.com/prometheus/client_golang/prometheus"

// ChannelStats is the opaque stats record spec.md attaches to a channel
// when its URL carries stat=yes. It tracks the four counters every
// transport impl can feed without knowing about Prometheus directly.
type ChannelStats struct {
	Name     string
	tx       prometheus.Counter
	txBytes  prometheus.Counter
	rx       prometheus.Counter
	rxBytes  prometheus.Counter
}

// NewChannelStats registers the tx/tx_bytes/rx/rx_bytes counter set for a
// channel under the given name. Safe to call once per channel; the
// registry calls it after the channel's name is set, and a registered set
// cannot be renamed.
func NewChannelStats(reg *MetricsRegistry, name string) (*ChannelStats, error) {
	cs := &ChannelStats{
		Name: name,
		tx: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tll",
			Subsystem:   "channel",
			Name:        "tx_total",
			ConstLabels: prometheus.Labels{"channel": name},
			Help:        "Total DATA messages posted by this channel",
		}),
		txBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tll",
			Subsystem:   "channel",
			Name:        "tx_bytes_total",
			ConstLabels: prometheus.Labels{"channel": name},
			Help:        "Total DATA bytes posted by this channel",
		}),
		rx: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tll",
			Subsystem:   "channel",
			Name:        "rx_total",
			ConstLabels: prometheus.Labels{"channel": name},
			Help:        "Total DATA messages received by this channel",
		}),
		rxBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tll",
			Subsystem:   "channel",
			Name:        "rx_bytes_total",
			ConstLabels: prometheus.Labels{"channel": name},
			Help:        "Total DATA bytes received by this channel",
		}),
	}

	if err := reg.RegisterCounter(name, "channel_tx", cs.tx); err != nil {
		return nil, err
	}
	if err := reg.RegisterCounter(name, "channel_tx_bytes", cs.txBytes); err != nil {
		return nil, err
	}
	if err := reg.RegisterCounter(name, "channel_rx", cs.rx); err != nil {
		return nil, err
	}
	if err := reg.RegisterCounter(name, "channel_rx_bytes", cs.rxBytes); err != nil {
		return nil, err
	}
	return cs, nil
}

// RecordTx increments the tx counters by one message of n bytes.
func (cs *ChannelStats) RecordTx(n int) {
	if cs == nil {
		return
	}
	cs.tx.Inc()
	cs.txBytes.Add(float64(n))
}

// RecordRx increments the rx counters by one message of n bytes.
func (cs *ChannelStats) RecordRx(n int) {
	if cs == nil {
		return
	}
	cs.rx.Inc()
	cs.rxBytes.Add(float64(n))
}
