package pixels

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceDescriptor requests device features and limits.
type DeviceDescriptor struct {
	Features gputypes.Features
	Limits   gputypes.Limits
}

// DefaultDeviceDescriptor returns a descriptor with no optional features and
// the default limits.
func DefaultDeviceDescriptor() DeviceDescriptor {
	return DeviceDescriptor{
		Features: gputypes.Features(0),
		Limits:   gputypes.DefaultLimits(),
	}
}

// gpuDevice is the device Pixels renders with.
type gpuDevice struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string

	// owned is false for devices shared by the host.
	owned bool
}

func (d *gpuDevice) destroy() {
	if d.owned && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	d.device, d.queue, d.instance = nil, nil, nil
}

// instanceFunc creates a HAL instance for a backend.
type instanceFunc func(backend gputypes.Backend) (hal.Instance, error)

func newHALInstance(backend gputypes.Backend) (hal.Instance, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("backend %v not available", backend)
	}
	return b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
}

// openDevice tries each backend in order and opens the first adapter that
// matches the power preference.
func openDevice(newInstance instanceFunc, backends []gputypes.Backend, pref PowerPreference, desc DeviceDescriptor) (*gpuDevice, error) {
	var errs []error
	for _, backend := range backends {
		instance, err := newInstance(backend)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		adapters := instance.EnumerateAdapters(nil)
		selected := SelectAdapter(adapters, pref)
		if selected == nil {
			instance.Destroy()
			errs = append(errs, fmt.Errorf("backend %v: no adapters", backend))
			continue
		}
		openDev, err := selected.Adapter.Open(desc.Features, desc.Limits)
		if err != nil {
			instance.Destroy()
			errs = append(errs, fmt.Errorf("open %s: %w", selected.Info.Name, err))
			continue
		}
		Logger().Info("pixels: adapter selected",
			"name", selected.Info.Name,
			"backend", backend,
			"power_preference", pref,
		)
		return &gpuDevice{
			instance: instance,
			device:   openDev.Device,
			queue:    openDev.Queue,
			name:     selected.Info.Name,
			owned:    true,
		}, nil
	}
	if len(errs) == 0 {
		return nil, ErrAdapterNotFound
	}
	return nil, fmt.Errorf("%w: %w", ErrAdapterNotFound, errors.Join(errs...))
}

// providerDevice extracts HAL handles from a host DeviceProvider. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func providerDevice(provider gpucontext.DeviceProvider) (*gpuDevice, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}
	Logger().Info("pixels: using shared device from provider")
	return &gpuDevice{device: device, queue: queue, name: "shared"}, nil
}
