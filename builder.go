// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixels

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pixels/internal/scaler"
	"github.com/gogpu/pixels/scaling"
)

// DefaultAcquireTimeout bounds how long Render waits for a surface frame
// and how long Close waits for frames still on the GPU.
const DefaultAcquireTimeout = 5 * time.Second

// Builder configures and creates a Pixels.
//
// Setters only record values; everything is validated and created by
// Build, which either returns a fully working Pixels or releases whatever
// it allocated.
//
//	p, err := pixels.NewBuilder(320, 240, surface).
//	    EnableVSync(false).
//	    AddRenderPass(newCRTPass).
//	    Build()
type Builder struct {
	width   uint32
	height  uint32
	surface *SurfaceTexture

	adapterOptions   *AdapterOptions
	deviceDesc       DeviceDescriptor
	backends         []gputypes.Backend
	pixelAspectRatio float32
	presentMode      PresentMode
	textureFormat    gputypes.TextureFormat
	surfaceFormat    gputypes.TextureFormat
	acquireTimeout   time.Duration
	clearColor       gputypes.Color
	spirv            bool
	factories        []RenderPassFactory

	device      hal.Device
	queue       hal.Queue
	provider    gpucontext.DeviceProvider
	newInstance instanceFunc
}

// NewBuilder creates a builder for a width x height pixel buffer presented
// on surface. It panics if either dimension is zero or surface is nil.
func NewBuilder(width, height uint32, surface *SurfaceTexture) *Builder {
	if width == 0 || height == 0 {
		panic(fmt.Sprintf("pixels: invalid pixel buffer size %dx%d", width, height))
	}
	if surface == nil {
		panic("pixels: nil surface texture")
	}
	return &Builder{
		width:            width,
		height:           height,
		surface:          surface,
		deviceDesc:       DefaultDeviceDescriptor(),
		backends:         []gputypes.Backend{gputypes.BackendVulkan},
		pixelAspectRatio: 1,
		presentMode:      PresentModeFifo,
		textureFormat:    DefaultTextureFormat,
		surfaceFormat:    gputypes.TextureFormatUndefined,
		acquireTimeout:   DefaultAcquireTimeout,
		clearColor:       gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		newInstance:      newHALInstance,
	}
}

// RequestAdapterOptions sets the adapter preference explicitly, overriding
// the PIXELS_HIGH_PERF and PIXELS_LOW_POWER environment variables.
func (b *Builder) RequestAdapterOptions(opts AdapterOptions) *Builder {
	b.adapterOptions = &opts
	return b
}

// DeviceDescriptor sets the requested device features and limits.
func (b *Builder) DeviceDescriptor(desc DeviceDescriptor) *Builder {
	b.deviceDesc = desc
	return b
}

// Backends sets the HAL backends to try, in order.
func (b *Builder) Backends(backends ...gputypes.Backend) *Builder {
	b.backends = append([]gputypes.Backend(nil), backends...)
	return b
}

// PixelAspectRatio sets the width of a pixel relative to its height.
// It panics if ratio is not greater than zero.
func (b *Builder) PixelAspectRatio(ratio float32) *Builder {
	if !(ratio > 0) {
		panic(fmt.Sprintf("pixels: invalid pixel aspect ratio %v", ratio))
	}
	b.pixelAspectRatio = ratio
	return b
}

// EnableVSync selects PresentModeFifo when enabled and
// PresentModeImmediate otherwise.
func (b *Builder) EnableVSync(enable bool) *Builder {
	if enable {
		b.presentMode = PresentModeFifo
	} else {
		b.presentMode = PresentModeImmediate
	}
	return b
}

// PresentMode sets the present mode explicitly.
func (b *Builder) PresentMode(mode PresentMode) *Builder {
	b.presentMode = mode
	return b
}

// TextureFormat sets the pixel buffer format. The default is
// DefaultTextureFormat.
func (b *Builder) TextureFormat(format gputypes.TextureFormat) *Builder {
	b.textureFormat = format
	return b
}

// SurfaceFormat sets the swap chain format.
func (b *Builder) SurfaceFormat(format gputypes.TextureFormat) *Builder {
	b.surfaceFormat = format
	return b
}

// AcquireTimeout bounds the wait for a surface frame in Render.
func (b *Builder) AcquireTimeout(d time.Duration) *Builder {
	b.acquireTimeout = d
	return b
}

// ClearColor sets the color of the borders around the scaled image.
func (b *Builder) ClearColor(c gputypes.Color) *Builder {
	b.clearColor = c
	return b
}

// CompileShadersToSPIRV makes the built-in scaler hand SPIR-V compiled by
// naga to the HAL instead of WGSL source.
func (b *Builder) CompileShadersToSPIRV(enable bool) *Builder {
	b.spirv = enable
	return b
}

// AddRenderPass appends a render pass created by factory after the scaler.
// Passes run in the order they were added.
func (b *Builder) AddRenderPass(factory RenderPassFactory) *Builder {
	b.factories = append(b.factories, factory)
	return b
}

// Device makes Pixels render with a device owned by the host. Adapter
// selection is skipped and the device is not destroyed by Close.
func (b *Builder) Device(device hal.Device, queue hal.Queue) *Builder {
	b.device, b.queue = device, queue
	return b
}

// DeviceProvider makes Pixels render with the device of a host provider
// such as a gogpu application. The provider's surface format becomes the
// default swap chain format.
func (b *Builder) DeviceProvider(provider gpucontext.DeviceProvider) *Builder {
	b.provider = provider
	return b
}

func (b *Builder) powerPreference() PowerPreference {
	if b.adapterOptions != nil {
		return b.adapterOptions.PowerPreference
	}
	return DefaultPowerPreference()
}

func (b *Builder) resolveSurfaceFormat() gputypes.TextureFormat {
	if b.surfaceFormat != gputypes.TextureFormatUndefined {
		return b.surfaceFormat
	}
	if b.provider != nil {
		if f := b.provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			return f
		}
	}
	return DefaultSurfaceFormat
}

func (b *Builder) acquireDevice() (*gpuDevice, error) {
	switch {
	case b.device != nil:
		if b.queue == nil {
			return nil, fmt.Errorf("pixels: shared device without queue")
		}
		return &gpuDevice{device: b.device, queue: b.queue, name: "shared"}, nil
	case b.provider != nil:
		return providerDevice(b.provider)
	default:
		return openDevice(b.newInstance, b.backends, b.powerPreference(), b.deviceDesc)
	}
}

// Build creates the Pixels. It fails with ErrAdapterNotFound when no
// adapter could be opened and with ErrUnsupportedFormat for pixel buffer
// formats of unknown size.
func (b *Builder) Build() (*Pixels, error) {
	formatSize, err := TextureFormatSize(b.textureFormat)
	if err != nil {
		return nil, err
	}
	if b.surface.state != SurfaceUninitialized {
		return nil, fmt.Errorf("pixels: surface texture already in use (%v)", b.surface.state)
	}

	gpu, err := b.acquireDevice()
	if err != nil {
		return nil, err
	}

	p := &Pixels{
		gpu:              gpu,
		surface:          b.surface,
		presentMode:      b.presentMode,
		surfaceFormat:    b.resolveSurfaceFormat(),
		textureFormat:    b.textureFormat,
		formatSize:       formatSize,
		textureExtent:    hal.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1},
		frame:            make([]byte, int(b.width)*int(b.height)*int(formatSize)),
		pixelAspectRatio: b.pixelAspectRatio,
		acquireTimeout:   b.acquireTimeout,
		pipeline:         NewPipeline(),
	}

	if err := b.build(p); err != nil {
		p.teardown()
		p.surface.state = SurfaceUninitialized
		return nil, err
	}
	return p, nil
}

func (b *Builder) build(p *Pixels) error {
	if err := p.createTexture(); err != nil {
		return err
	}
	if err := p.surface.configure(p.gpu.device, p.surfaceConfig(p.surface.width, p.surface.height)); err != nil {
		return err
	}
	p.matrix = scaling.New(
		[2]float32{float32(b.width), float32(b.height)},
		[2]float32{float32(p.surface.width), float32(p.surface.height)},
		b.pixelAspectRatio,
	)

	scale, err := scaler.New(p.gpu.device, p.gpu.queue, p.textureView, scaler.Config{
		TextureWidth:     b.width,
		TextureHeight:    b.height,
		SurfaceWidth:     p.surface.width,
		SurfaceHeight:    p.surface.height,
		PixelAspectRatio: b.pixelAspectRatio,
		TargetFormat:     p.surfaceFormat,
		ClearColor:       b.clearColor,
		SPIRV:            b.spirv,
	})
	if err != nil {
		return err
	}
	p.scaler = scale
	p.pipeline.Add(scale)

	for i, factory := range b.factories {
		pass, err := factory(p.gpu.device, p.gpu.queue, p.textureView, p.textureExtent)
		if err != nil {
			return fmt.Errorf("pixels: render pass %d: %w", i+1, err)
		}
		p.pipeline.Add(pass)
	}

	Logger().Debug("pixels: built",
		"width", b.width,
		"height", b.height,
		"texture_format", b.textureFormat,
		"surface_format", p.surfaceFormat,
		"present_mode", b.presentMode,
		"passes", p.pipeline.Len(),
	)
	return nil
}
