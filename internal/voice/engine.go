package voice

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/gamechat/internal/audio"
)

const (
	// recvBufferSize caps an inbound datagram. The kernel truncates
	// anything larger on read; decodeFrame then trims to the last
	// complete sample.
	recvBufferSize = 4096

	// The hand-off queues hold about 700 ms of 512-sample frames at
	// 48 kHz, enough to ride out a scheduling hiccup without letting a
	// stalled loop pin unbounded memory.
	outboundQueueCap = 64
	playbackQueueCap = 64

	readPollInterval = 1 * time.Second
)

// Placeholder names reported when device enumeration fails or finds
// nothing, so callers always have an entry to show.
const (
	placeholderInput  = "Default Input"
	placeholderOutput = "Default Output"
)

// Config carries the engine's collaborators and audio format. Zero
// format values select the device default sample rate, mono, and
// 512-frame buffers.
type Config struct {
	BindAddr        string
	Host            audio.Host
	InputDevice     string
	OutputDevice    string
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	Logger          zerolog.Logger
	Metrics         *Metrics
}

// Engine moves microphone audio to a UDP peer and peer audio to the
// speaker. The socket is bound once at construction and survives
// start/stop cycles. All control-surface methods are safe for
// concurrent use; none of them is called from the audio thread.
type Engine struct {
	conn *net.UDPConn
	host audio.Host
	cfg  Config
	log  zerolog.Logger
	met  *Metrics

	recording atomic.Bool

	targetMu sync.Mutex
	target   *net.UDPAddr

	outbound *ring[[]byte]
	playback *ring[[]float32]

	// mu serializes start/stop transitions, never the data path.
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	counts counters
}

type counters struct {
	framesSent        atomic.Uint64
	framesReceived    atomic.Uint64
	sendErrors        atomic.Uint64
	recvErrors        atomic.Uint64
	noTargetDrops     atomic.Uint64
	outboundEvictions atomic.Uint64
	playbackEvictions atomic.Uint64
	underruns         atomic.Uint64
}

// Stats is a point-in-time snapshot of the engine's data path.
type Stats struct {
	Running           bool   `json:"running"`
	LocalAddr         string `json:"local_addr"`
	Target            string `json:"target,omitempty"`
	FramesSent        uint64 `json:"frames_sent"`
	FramesReceived    uint64 `json:"frames_received"`
	SendErrors        uint64 `json:"send_errors"`
	RecvErrors        uint64 `json:"recv_errors"`
	NoTargetDrops     uint64 `json:"no_target_drops"`
	OutboundEvictions uint64 `json:"outbound_evictions"`
	PlaybackEvictions uint64 `json:"playback_evictions"`
	Underruns         uint64 `json:"playback_underruns"`
	OutboundQueueLen  int    `json:"outbound_queue_len"`
	PlaybackQueueLen  int    `json:"playback_queue_len"`
}

// New binds the engine's UDP socket. A bind failure is fatal; nothing
// else about construction can fail. An empty BindAddr binds an
// ephemeral port on all interfaces.
func New(cfg Config) (*Engine, error) {
	if cfg.Host == nil {
		return nil, fmt.Errorf("audio host is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}

	bind := cfg.BindAddr
	if bind == "" {
		bind = "0.0.0.0:0"
	}
	addr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bind address %q: %w", bind, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP socket on %q: %w", bind, err)
	}

	e := &Engine{
		conn:     conn,
		host:     cfg.Host,
		cfg:      cfg,
		log:      cfg.Logger,
		met:      cfg.Metrics,
		outbound: newRing[[]byte](outboundQueueCap),
		playback: newRing[[]float32](playbackQueueCap),
	}
	e.log.Info().Str("local_addr", conn.LocalAddr().String()).Msg("Voice engine bound")
	return e, nil
}

// SetTarget replaces the peer address for subsequently initiated sends.
// A nil target discards captured audio until a new one is set. The last
// write wins; a frame already picked up by the loop may still go to the
// previous target.
func (e *Engine) SetTarget(addr *net.UDPAddr) {
	e.targetMu.Lock()
	e.target = addr
	e.targetMu.Unlock()

	if addr != nil {
		e.log.Info().Str("target", addr.String()).Msg("Voice target set")
	} else {
		e.log.Info().Msg("Voice target cleared")
	}
}

// Target returns the current peer address, or nil when unset.
func (e *Engine) Target() *net.UDPAddr {
	e.targetMu.Lock()
	defer e.targetMu.Unlock()
	return e.target
}

// Start brings up capture, playback, and the network loop. Calling it
// while running is a no-op. A missing input or output device disables
// that direction for the run; a device that exists but whose stream
// cannot be opened fails the whole start and leaves the engine stopped.
//
// Restarting immediately after Stop is safe: even with a new run live,
// the old worker completes at most one more exchange and then exits
// through its own stop channel.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recording.Load() {
		e.log.Debug().Msg("Voice engine already running")
		return nil
	}

	inStream, err := e.openCapture()
	if err != nil {
		return err
	}
	outStream, err := e.openPlayback()
	if err != nil {
		if inStream != nil {
			inStream.Stop()
			inStream.Close()
		}
		return err
	}
	if inStream == nil && outStream == nil {
		e.log.Warn().Msg("No audio devices available, running network loop only")
	}

	streams := make([]audio.Stream, 0, 2)
	if inStream != nil {
		streams = append(streams, inStream)
	}
	if outStream != nil {
		streams = append(streams, outStream)
	}

	e.drainQueues()

	stop := make(chan struct{})
	done := make(chan struct{})
	recvCh := make(chan []byte)
	e.stop = stop
	e.done = done

	e.recording.Store(true)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.readSocket(stop, recvCh)
	}()
	go func() {
		defer wg.Done()
		e.runLoop(stop, recvCh)
	}()
	go func() {
		wg.Wait()
		for _, s := range streams {
			if err := s.Stop(); err != nil {
				e.log.Debug().Err(err).Msg("Stream stop failed")
			}
			if err := s.Close(); err != nil {
				e.log.Debug().Err(err).Msg("Stream close failed")
			}
		}
		close(done)
	}()

	e.log.Info().
		Bool("capture", inStream != nil).
		Bool("playback", outStream != nil).
		Msg("Voice engine started")
	return nil
}

// Stop requests wind-down and returns without waiting for it. The
// worker completes at most one more exchange; Done reports when it has
// fully exited. Stopping a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.recording.Load() {
		return
	}
	e.recording.Store(false)
	close(e.stop)

	// Kick the socket reader out of its current blocking read.
	e.conn.SetReadDeadline(time.Now())

	e.log.Info().Msg("Voice engine stopping")
}

// Done returns a channel closed once the most recent run has fully
// wound down, audio streams included. Waiting on it after Stop gives a
// graceful shutdown; nothing requires callers to. Before the first
// start it is already closed.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return e.done
}

// Running reports whether the engine is between a Start and a Stop.
func (e *Engine) Running() bool {
	return e.recording.Load()
}

// LocalAddr returns the bound UDP address, useful after binding port 0.
func (e *Engine) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Close stops the engine and releases the socket. The engine cannot be
// restarted afterwards.
func (e *Engine) Close() error {
	e.Stop()
	return e.conn.Close()
}

// Stats returns a snapshot of the data-path counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Running:           e.recording.Load(),
		LocalAddr:         e.LocalAddr().String(),
		FramesSent:        e.counts.framesSent.Load(),
		FramesReceived:    e.counts.framesReceived.Load(),
		SendErrors:        e.counts.sendErrors.Load(),
		RecvErrors:        e.counts.recvErrors.Load(),
		NoTargetDrops:     e.counts.noTargetDrops.Load(),
		OutboundEvictions: e.counts.outboundEvictions.Load(),
		PlaybackEvictions: e.counts.playbackEvictions.Load(),
		Underruns:         e.counts.underruns.Load(),
		OutboundQueueLen:  e.outbound.len(),
		PlaybackQueueLen:  e.playback.len(),
	}
	if t := e.Target(); t != nil {
		s.Target = t.String()
	}
	return s
}
