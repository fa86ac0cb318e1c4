package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const defaultFramesPerBuffer = 512

type paHost struct{}

// NewHost initializes PortAudio and returns a Host backed by it
func NewHost() (Host, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &paHost{}, nil
}

func (h *paHost) OpenInput(cfg StreamConfig, cb func(in []float32)) (Stream, error) {
	device, err := findInputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channelCount(cfg),
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate(cfg, device),
		FramesPerBuffer: framesPerBuffer(cfg),
	}, cb)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}

	return &paStream{stream: stream}, nil
}

func (h *paHost) OpenOutput(cfg StreamConfig, cb func(out []float32)) (Stream, error) {
	device, err := findOutputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channelCount(cfg),
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate(cfg, device),
		FramesPerBuffer: framesPerBuffer(cfg),
	}, cb)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}

	return &paStream{stream: stream}, nil
}

func (h *paHost) InputDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

func (h *paHost) OutputDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultOutputDevice()

	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

func (h *paHost) Close() error {
	portaudio.Terminate()
	return nil
}

func findInputDevice(id string) (*portaudio.DeviceInfo, error) {
	if id == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == id && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: input %q not found", ErrNoDevice, id)
}

func findOutputDevice(id string) (*portaudio.DeviceInfo, error) {
	if id == "" {
		device, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == id && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: output %q not found", ErrNoDevice, id)
}

func channelCount(cfg StreamConfig) int {
	if cfg.Channels > 0 {
		return cfg.Channels
	}
	return 1
}

func sampleRate(cfg StreamConfig, device *portaudio.DeviceInfo) float64 {
	if cfg.SampleRate > 0 {
		return cfg.SampleRate
	}
	return device.DefaultSampleRate
}

func framesPerBuffer(cfg StreamConfig) int {
	if cfg.FramesPerBuffer > 0 {
		return cfg.FramesPerBuffer
	}
	return defaultFramesPerBuffer
}

type paStream struct {
	stream *portaudio.Stream
}

func (s *paStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start audio stream: %w", err)
	}
	return nil
}

func (s *paStream) Stop() error {
	return s.stream.Stop()
}

func (s *paStream) Close() error {
	return s.stream.Close()
}
