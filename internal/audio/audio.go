package audio

import "errors"

// ErrNoDevice indicates the host has no usable device in the requested
// direction. Callers treat it as an absent device, not a failure.
var ErrNoDevice = errors.New("no audio device available")

// Device represents an audio input or output device
type Device struct {
	ID      string
	Name    string
	Default bool
}

// StreamConfig selects the device and format for a stream. Zero values
// pick the device default sample rate, mono, and 512-frame buffers.
type StreamConfig struct {
	DeviceID        string
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
}

// Stream is a running capture or playback stream
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Host opens audio streams and enumerates devices. Stream callbacks run
// on the real-time audio thread and must never block.
type Host interface {
	OpenInput(cfg StreamConfig, cb func(in []float32)) (Stream, error)
	OpenOutput(cfg StreamConfig, cb func(out []float32)) (Stream, error)
	InputDevices() ([]Device, error)
	OutputDevices() ([]Device, error)
	Close() error
}
