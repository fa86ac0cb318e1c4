package voice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus instruments for the engine's data
// path. Send and receive failures are swallowed on the hot path, so
// these counters are where they surface besides debug logs.
type Metrics struct {
	FramesSent        prometheus.Counter
	FramesReceived    prometheus.Counter
	SendErrors        prometheus.Counter
	RecvErrors        prometheus.Counter
	NoTargetDrops     prometheus.Counter
	OutboundEvictions prometheus.Counter
	PlaybackEvictions prometheus.Counter
	Underruns         prometheus.Counter
}

// NewMetrics creates and registers the engine metrics with reg. A nil
// reg falls back to the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FramesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_frames_sent_total",
			Help: "Total number of captured frames sent to the peer",
		}),
		FramesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_frames_received_total",
			Help: "Total number of datagrams received from the peer",
		}),
		SendErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_send_errors_total",
			Help: "Total number of failed datagram sends",
		}),
		RecvErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_recv_errors_total",
			Help: "Total number of failed datagram receives",
		}),
		NoTargetDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_no_target_drops_total",
			Help: "Total number of captured frames discarded because no target was set",
		}),
		OutboundEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_outbound_evictions_total",
			Help: "Total number of captured frames evicted from the outbound queue",
		}),
		PlaybackEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_playback_evictions_total",
			Help: "Total number of received frames evicted from the playback queue",
		}),
		Underruns: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamechat_voice_playback_underruns_total",
			Help: "Total number of playback callbacks filled entirely with silence",
		}),
	}
}
