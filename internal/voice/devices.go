package voice

import "github.com/petems/gamechat/internal/audio"

// InputDeviceNames lists capture device names in enumeration order. It
// never fails: a nil host, a host error or an empty result yields a
// single placeholder entry.
func InputDeviceNames(h audio.Host) []string {
	if h == nil {
		return []string{placeholderInput}
	}
	devices, err := h.InputDevices()
	if err != nil || len(devices) == 0 {
		return []string{placeholderInput}
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// OutputDeviceNames mirrors InputDeviceNames for playback devices.
func OutputDeviceNames(h audio.Host) []string {
	if h == nil {
		return []string{placeholderOutput}
	}
	devices, err := h.OutputDevices()
	if err != nil || len(devices) == 0 {
		return []string{placeholderOutput}
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// ListInputDevices lists capture devices on the engine's host. Safe to
// call in any engine state; it touches neither the lifecycle mutex nor
// the target lock.
func (e *Engine) ListInputDevices() []string {
	return InputDeviceNames(e.host)
}

// ListOutputDevices mirrors ListInputDevices for playback devices.
func (e *Engine) ListOutputDevices() []string {
	return OutputDeviceNames(e.host)
}
