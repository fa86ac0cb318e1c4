package voice

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeFrameLayout(t *testing.T) {
	samples := []float32{0.5, -1.25}
	data := encodeFrame(samples)

	if len(data) != 8 {
		t.Fatalf("payload length = %d, want 8", len(data))
	}
	for i, s := range samples {
		bits := binary.NativeEndian.Uint32(data[i*4:])
		if bits != math.Float32bits(s) {
			t.Errorf("sample %d bits = %#x, want %#x", i, bits, math.Float32bits(s))
		}
	}
}

func TestDecodeFrameDropsPartialTail(t *testing.T) {
	data := encodeFrame([]float32{1, 2})
	data = append(data, 0xFF, 0xFF, 0xFF) // three stray bytes

	samples := decodeFrame(data)
	if len(samples) != 2 {
		t.Fatalf("decoded %d samples, want 2", len(samples))
	}
	if samples[0] != 1 || samples[1] != 2 {
		t.Errorf("decoded %v, want [1 2]", samples)
	}

	if got := decodeFrame(nil); len(got) != 0 {
		t.Errorf("nil payload decoded to %d samples", len(got))
	}
	if got := decodeFrame([]byte{1, 2, 3}); len(got) != 0 {
		t.Errorf("sub-sample payload decoded to %d samples", len(got))
	}
}

func TestRoundTripPreservesBits(t *testing.T) {
	// Compare bit patterns, not values: NaN never equals itself
	samples := []float32{
		0,
		float32(math.Copysign(0, -1)),
		float32(math.NaN()),
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
		math.MaxFloat32,
		-math.SmallestNonzeroFloat32,
	}

	got := decodeFrame(encodeFrame(samples))
	if len(got) != len(samples) {
		t.Fatalf("round trip length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if math.Float32bits(got[i]) != math.Float32bits(samples[i]) {
			t.Errorf("sample %d bits = %#x, want %#x",
				i, math.Float32bits(got[i]), math.Float32bits(samples[i]))
		}
	}
}
