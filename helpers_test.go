package pixels

import (
	"fmt"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// noopInstance creates HAL instances on the noop backend regardless of the
// requested backend.
func noopInstance(gputypes.Backend) (hal.Instance, error) {
	api := noop.API{}
	return api.CreateInstance(nil)
}

// fakeSurface is a host surface backed by a noop texture.
type fakeSurface struct {
	configs      []SurfaceConfig
	unconfigured int
	acquired     int
	presented    int
	discarded    int
	timeouts     []time.Duration

	acquireErr   error
	configureErr error
	presentErr   error

	device  hal.Device
	texture hal.Texture
	view    hal.TextureView
}

func (s *fakeSurface) Configure(device hal.Device, config SurfaceConfig) error {
	if s.configureErr != nil {
		return s.configureErr
	}
	s.destroyTarget()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "fake_swapchain",
		Size:          hal.Extent3D{Width: config.Width, Height: config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        config.Format,
		Usage:         config.Usage,
	})
	if err != nil {
		return err
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "fake_swapchain_view",
		Format:        config.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return err
	}
	s.device, s.texture, s.view = device, tex, view
	s.configs = append(s.configs, config)
	return nil
}

func (s *fakeSurface) Unconfigure(hal.Device) {
	s.destroyTarget()
	s.unconfigured++
}

func (s *fakeSurface) destroyTarget() {
	if s.device == nil {
		return
	}
	s.device.DestroyTextureView(s.view)
	s.device.DestroyTexture(s.texture)
	s.device, s.texture, s.view = nil, nil, nil
}

func (s *fakeSurface) AcquireFrame(timeout time.Duration) (SurfaceFrame, error) {
	s.timeouts = append(s.timeouts, timeout)
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.acquired++
	return fakeFrame{s}, nil
}

func (s *fakeSurface) lastConfig() SurfaceConfig {
	if len(s.configs) == 0 {
		return SurfaceConfig{}
	}
	return s.configs[len(s.configs)-1]
}

type fakeFrame struct{ s *fakeSurface }

func (f fakeFrame) View() hal.TextureView { return f.s.view }

func (f fakeFrame) Present(hal.Queue) error {
	if f.s.presentErr != nil {
		return f.s.presentErr
	}
	f.s.presented++
	return nil
}

func (f fakeFrame) Discard() { f.s.discarded++ }

// recordingPass logs every call into a shared event log.
type recordingPass struct {
	name      string
	events    *[]string
	resizes   [][2]uint32
	destroyed bool
}

func (r *recordingPass) Resize(width, height uint32) {
	r.resizes = append(r.resizes, [2]uint32{width, height})
	*r.events = append(*r.events, fmt.Sprintf("resize %s %dx%d", r.name, width, height))
}

func (r *recordingPass) Render(_ hal.CommandEncoder, target hal.TextureView) {
	if target == nil {
		*r.events = append(*r.events, "render "+r.name+" (nil target)")
		return
	}
	*r.events = append(*r.events, "render "+r.name)
}

func (r *recordingPass) Destroy() {
	r.destroyed = true
	*r.events = append(*r.events, "destroy "+r.name)
}

// recordingFactory returns a factory producing a recordingPass and a
// pointer through which the test can inspect it.
func recordingFactory(name string, events *[]string) (RenderPassFactory, **recordingPass) {
	var created *recordingPass
	factory := func(device hal.Device, queue hal.Queue, texture hal.TextureView, size hal.Extent3D) (RenderPass, error) {
		if device == nil || queue == nil || texture == nil {
			return nil, fmt.Errorf("factory %s: missing GPU handles", name)
		}
		*events = append(*events, fmt.Sprintf("create %s %dx%d", name, size.Width, size.Height))
		created = &recordingPass{name: name, events: events}
		return created, nil
	}
	return factory, &created
}

// newTestBuilder returns a builder on a fresh noop device and fake surface.
func newTestBuilder(t *testing.T, tw, th, sw, sh uint32) (*Builder, *fakeSurface) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	fs := &fakeSurface{}
	b := NewBuilder(tw, th, NewSurfaceTexture(sw, sh, fs)).Device(device, queue)
	return b, fs
}

// newTestPixels builds a Pixels with default options on a noop device.
func newTestPixels(t *testing.T, tw, th, sw, sh uint32) (*Pixels, *fakeSurface) {
	t.Helper()
	b, fs := newTestBuilder(t, tw, th, sw, sh)
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, fs
}

// trackingDevice wraps a device to observe fence waits and the release of
// submitted work. With stall set, submitted work never finishes.
type trackingDevice struct {
	hal.Device
	stall           bool
	waitTimeouts    []time.Duration
	freedCmdBufs    int
	destroyedFences int
}

func (d *trackingDevice) Wait(fence hal.Fence, value uint64, timeout time.Duration) (bool, error) {
	d.waitTimeouts = append(d.waitTimeouts, timeout)
	if d.stall {
		return false, nil
	}
	return d.Device.Wait(fence, value, timeout)
}

func (d *trackingDevice) FreeCommandBuffer(cmdBuf hal.CommandBuffer) {
	d.freedCmdBufs++
	d.Device.FreeCommandBuffer(cmdBuf)
}

func (d *trackingDevice) DestroyFence(fence hal.Fence) {
	d.destroyedFences++
	d.Device.DestroyFence(fence)
}

// trackingQueue counts texture uploads and can fail them.
type trackingQueue struct {
	hal.Queue
	uploads   int
	uploadErr error
}

func (q *trackingQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	q.uploads++
	if q.uploadErr != nil {
		return q.uploadErr
	}
	return q.Queue.WriteTexture(dst, data, layout, size)
}

// newTrackedBuilder is newTestBuilder with the device and queue wrapped.
func newTrackedBuilder(t *testing.T, tw, th, sw, sh uint32) (*Builder, *fakeSurface, *trackingDevice, *trackingQueue) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	td := &trackingDevice{Device: device}
	tq := &trackingQueue{Queue: queue}
	fs := &fakeSurface{}
	b := NewBuilder(tw, th, NewSurfaceTexture(sw, sh, fs)).Device(td, tq)
	return b, fs, td, tq
}
