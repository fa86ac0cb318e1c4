package voice

import (
	"errors"
	"fmt"

	"github.com/petems/gamechat/internal/audio"
)

func (e *Engine) streamConfig(deviceID string) audio.StreamConfig {
	return audio.StreamConfig{
		DeviceID:        deviceID,
		SampleRate:      e.cfg.SampleRate,
		Channels:        e.cfg.Channels,
		FramesPerBuffer: e.cfg.FramesPerBuffer,
	}
}

// openCapture starts the input stream. A missing device returns
// (nil, nil) so the run continues without capture.
func (e *Engine) openCapture() (audio.Stream, error) {
	stream, err := e.host.OpenInput(e.streamConfig(e.cfg.InputDevice), e.captureCallback)
	if errors.Is(err, audio.ErrNoDevice) {
		e.log.Warn().Err(err).Msg("No input device, capture disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start capture stream: %w", err)
	}
	return stream, nil
}

// openPlayback mirrors openCapture for the output direction.
func (e *Engine) openPlayback() (audio.Stream, error) {
	stream, err := e.host.OpenOutput(e.streamConfig(e.cfg.OutputDevice), e.playbackCallback)
	if errors.Is(err, audio.ErrNoDevice) {
		e.log.Warn().Err(err).Msg("No output device, playback disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start playback stream: %w", err)
	}
	return stream, nil
}

// captureCallback runs on the audio thread. It serializes the buffer
// and hands it to the network loop. Nothing here may block: the queue
// push evicts instead of waiting and the counters are plain atomics.
func (e *Engine) captureCallback(in []float32) {
	if !e.recording.Load() {
		return
	}
	if e.outbound.push(encodeFrame(in)) {
		e.counts.outboundEvictions.Add(1)
		e.met.OutboundEvictions.Inc()
	}
}

// playbackCallback runs on the audio thread. Exactly one queue pop per
// invocation: a frame shorter than the buffer leaves silence in the
// tail, a longer one is cut at the buffer's end and the excess is
// dropped, an empty queue yields a full buffer of silence.
func (e *Engine) playbackCallback(out []float32) {
	frame, ok := e.playback.tryPop()
	if !ok {
		e.counts.underruns.Add(1)
		e.met.Underruns.Inc()
		clear(out)
		return
	}
	n := copy(out, frame)
	clear(out[n:])
}

// drainQueues flushes frames left over from the previous run.
func (e *Engine) drainQueues() {
	for {
		if _, ok := e.outbound.tryPop(); !ok {
			break
		}
	}
	for {
		if _, ok := e.playback.tryPop(); !ok {
			break
		}
	}
}
