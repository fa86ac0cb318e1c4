package voice

import (
	"encoding/binary"
	"math"
)

// sampleSize is the wire width of one sample: a float32 in the host's
// native byte order, the same layout the capture buffer has in memory.
// The payload is raw samples back to back, no header, no sequencing.
const sampleSize = 4

// encodeFrame serializes samples into a datagram payload of exactly
// len(samples)*4 bytes.
func encodeFrame(samples []float32) []byte {
	buf := make([]byte, len(samples)*sampleSize)
	for i, s := range samples {
		binary.NativeEndian.PutUint32(buf[i*sampleSize:], math.Float32bits(s))
	}
	return buf
}

// decodeFrame reinterprets a datagram payload as samples. Trailing
// bytes short of a full sample are discarded.
func decodeFrame(data []byte) []float32 {
	samples := make([]float32, len(data)/sampleSize)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.NativeEndian.Uint32(data[i*sampleSize:]))
	}
	return samples
}
