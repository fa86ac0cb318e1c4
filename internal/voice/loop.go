package voice

import (
	"net"
	"time"
)

// runLoop is the engine's single network loop. Outbound frames go to
// whatever target is set at the moment of the send; inbound datagrams
// are decoded and queued for playback. The running flag is observed
// once per iteration, so at most one more exchange completes after a
// stop request.
func (e *Engine) runLoop(stop <-chan struct{}, recvCh <-chan []byte) {
	e.log.Debug().Msg("Network loop started")
	defer e.log.Debug().Msg("Network loop stopped")

	for {
		if !e.recording.Load() {
			return
		}
		select {
		case <-stop:
			return
		case frame := <-e.outbound.ch:
			e.sendFrame(frame)
		case pkt := <-recvCh:
			e.deliverFrame(pkt)
		}
	}
}

// sendFrame sends one encoded frame to the current target. No target
// means the frame is discarded; a send failure is counted and
// swallowed, never surfaced to the caller side.
func (e *Engine) sendFrame(frame []byte) {
	target := e.Target()
	if target == nil {
		e.counts.noTargetDrops.Add(1)
		e.met.NoTargetDrops.Inc()
		return
	}

	if _, err := e.conn.WriteToUDP(frame, target); err != nil {
		e.counts.sendErrors.Add(1)
		e.met.SendErrors.Inc()
		e.log.Debug().Err(err).Msg("Send failed")
		return
	}
	e.counts.framesSent.Add(1)
	e.met.FramesSent.Inc()
}

// deliverFrame decodes an inbound payload and queues it for playback.
// A payload with a trailing partial sample is trimmed; an empty one
// still queues, which the playback callback renders as silence.
func (e *Engine) deliverFrame(pkt []byte) {
	e.counts.framesReceived.Add(1)
	e.met.FramesReceived.Inc()

	if e.playback.push(decodeFrame(pkt)) {
		e.counts.playbackEvictions.Add(1)
		e.met.PlaybackEvictions.Inc()
	}
}

// readSocket turns datagram arrival into channel events for the loop.
// Reads poll with a deadline so a stop request is noticed within one
// interval even when the peer goes quiet. Receive errors are counted
// and swallowed.
func (e *Engine) readSocket(stop <-chan struct{}, recvCh chan<- []byte) {
	buf := make([]byte, recvBufferSize)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := e.conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			e.log.Debug().Err(err).Msg("Failed to set read deadline")
		}

		n, _, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-stop:
				return
			default:
			}
			e.counts.recvErrors.Add(1)
			e.met.RecvErrors.Inc()
			e.log.Debug().Err(err).Msg("Receive failed")
			continue
		}

		// Copy out of the reusable read buffer before handing off.
		pkt := make([]byte, n)
		copy(pkt, buf[:n])

		select {
		case recvCh <- pkt:
		case <-stop:
			return
		}
	}
}
