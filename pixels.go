// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixels

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pixels/internal/scaler"
	"github.com/gogpu/pixels/scaling"
)

// Pixels is a fixed-size pixel buffer presented on a window surface.
//
// Pixels is not safe for concurrent use. All methods must be called from
// the goroutine that drives the host's event loop.
type Pixels struct {
	gpu *gpuDevice

	surface       *SurfaceTexture
	presentMode   PresentMode
	surfaceFormat gputypes.TextureFormat

	pipeline *Pipeline
	scaler   *scaler.Pass

	texture       hal.Texture
	textureView   hal.TextureView
	textureExtent hal.Extent3D
	textureFormat gputypes.TextureFormat
	formatSize    uint32
	frame         []byte

	pixelAspectRatio float32
	matrix           scaling.Matrix
	acquireTimeout   time.Duration
	inFlight         []submission
	closed           bool
}

// New creates a width x height pixel buffer presented on surface with the
// default configuration. See Builder for options.
func New(width, height uint32, surface *SurfaceTexture) (*Pixels, error) {
	return NewBuilder(width, height, surface).Build()
}

func (p *Pixels) createTexture() error {
	tex, err := p.gpu.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "pixels_source_texture",
		Size:          p.textureExtent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        p.textureFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("pixels: create texture: %w", err)
	}
	p.texture = tex

	view, err := p.gpu.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "pixels_source_view",
		Format:        p.textureFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("pixels: create texture view: %w", err)
	}
	p.textureView = view
	return nil
}

func (p *Pixels) surfaceConfig(width, height uint32) SurfaceConfig {
	return SurfaceConfig{
		Width:       width,
		Height:      height,
		Format:      p.surfaceFormat,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: p.presentMode,
	}
}

// Resize reconfigures the surface for a new physical size, recomputes the
// scaling matrix and resizes every render pass, in that order. Resizing a
// ready surface to its current size does nothing. It panics if either
// dimension is zero.
func (p *Pixels) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		panic(fmt.Sprintf("pixels: invalid surface size %dx%d", width, height))
	}
	if p.closed {
		return ErrClosed
	}
	if p.surface.state == SurfaceReady && p.surface.width == width && p.surface.height == height {
		return nil
	}

	p.surface.markStale()
	if err := p.surface.configure(p.gpu.device, p.surfaceConfig(width, height)); err != nil {
		return fmt.Errorf("pixels: resize: %w", err)
	}
	p.matrix = scaling.New(
		[2]float32{float32(p.textureExtent.Width), float32(p.textureExtent.Height)},
		[2]float32{float32(width), float32(height)},
		p.pixelAspectRatio,
	)
	p.pipeline.Resize(width, height)

	Logger().Debug("pixels: surface reconfigured",
		"width", width,
		"height", height,
		"scale", p.matrix.Scale,
	)
	return nil
}

// Render uploads the pixel buffer and draws it through every render pass
// onto the next surface frame.
//
// If the surface cannot provide a frame, Render returns an error wrapping
// ErrTimeout and nothing is uploaded or drawn; the call may simply be
// retried on a later tick. Acquiring the frame is the only wait. If the surface reports that it is outdated, it
// is marked stale and Render returns ErrSurfaceStale until Resize is called.
func (p *Pixels) Render() error {
	if p.closed {
		return ErrClosed
	}
	if p.surface.state != SurfaceReady {
		return ErrSurfaceStale
	}

	frame, err := p.surface.surface.AcquireFrame(p.acquireTimeout)
	if err != nil {
		if errors.Is(err, ErrSurfaceOutdated) {
			p.surface.markStale()
			return fmt.Errorf("%w: %w", ErrSurfaceStale, err)
		}
		Logger().Warn("pixels: frame skipped", "err", err)
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	if err := p.encodeSubmit(frame.View()); err != nil {
		frame.Discard()
		return err
	}
	if err := frame.Present(p.gpu.queue); err != nil {
		if errors.Is(err, ErrSurfaceOutdated) {
			p.surface.markStale()
		}
		return fmt.Errorf("pixels: present: %w", err)
	}
	return nil
}

// upload copies the pixel buffer into the source texture.
func (p *Pixels) upload() error {
	w, h := p.textureExtent.Width, p.textureExtent.Height
	err := p.gpu.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  p.texture,
			MipLevel: 0,
		},
		p.frame,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * p.formatSize,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("pixels: upload: %w", err)
	}
	return nil
}

// submission is a submitted frame whose command buffer the GPU may still
// be reading.
type submission struct {
	cmdBuf hal.CommandBuffer
	fence  hal.Fence
}

// encodeSubmit uploads the frame, records every pass into one command
// encoder and submits it. Queue order guarantees the work completes before
// the frame is presented, so the CPU does not wait here.
func (p *Pixels) encodeSubmit(target hal.TextureView) error {
	device, queue := p.gpu.device, p.gpu.queue

	p.retire(0)
	if err := p.upload(); err != nil {
		return err
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "pixels_command_encoder",
	})
	if err != nil {
		return fmt.Errorf("pixels: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("pixels_frame"); err != nil {
		return fmt.Errorf("pixels: begin encoding: %w", err)
	}

	p.pipeline.Render(encoder, target)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("pixels: end encoding: %w", err)
	}
	fence, err := device.CreateFence()
	if err != nil {
		device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("pixels: create fence: %w", err)
	}
	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		device.DestroyFence(fence)
		device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("pixels: submit: %w", err)
	}
	p.inFlight = append(p.inFlight, submission{cmdBuf: cmdBuf, fence: fence})
	return nil
}

// retire frees the submissions the GPU has finished, waiting at most
// timeout for each. Unfinished submissions stay in flight.
func (p *Pixels) retire(timeout time.Duration) {
	device := p.gpu.device
	pending := p.inFlight[:0]
	for _, s := range p.inFlight {
		done, err := device.Wait(s.fence, 1, timeout)
		if err != nil || !done {
			pending = append(pending, s)
			continue
		}
		device.DestroyFence(s.fence)
		device.FreeCommandBuffer(s.cmdBuf)
	}
	clear(p.inFlight[len(pending):])
	p.inFlight = pending
}

// Frame returns the pixel buffer. Its length is width*height*texel size and
// it keeps the previous frame's contents until overwritten.
func (p *Pixels) Frame() []byte { return p.frame }

// TextureSize returns the pixel buffer size.
func (p *Pixels) TextureSize() (width, height uint32) {
	return p.textureExtent.Width, p.textureExtent.Height
}

// TextureFormat returns the pixel buffer format.
func (p *Pixels) TextureFormat() gputypes.TextureFormat { return p.textureFormat }

// SurfaceSize returns the physical surface size.
func (p *Pixels) SurfaceSize() (width, height uint32) {
	return p.surface.width, p.surface.height
}

// Surface returns the surface texture.
func (p *Pixels) Surface() *SurfaceTexture { return p.surface }

// ScalingMatrix returns the current scaling matrix.
func (p *Pixels) ScalingMatrix() scaling.Matrix { return p.matrix }

// Pipeline returns the render pipeline. The built-in scaler is pass 0.
func (p *Pixels) Pipeline() *Pipeline { return p.pipeline }

// Device returns the device passes should create resources on.
func (p *Pixels) Device() hal.Device { return p.gpu.device }

// Queue returns the queue shared by all passes.
func (p *Pixels) Queue() hal.Queue { return p.gpu.queue }

// AdapterName returns the name of the adapter in use, or "shared" for a
// host-provided device.
func (p *Pixels) AdapterName() string { return p.gpu.name }

// WindowPosToPixel maps a physical window position to pixel buffer
// coordinates. Positions in the borders around the image or outside the
// window return ErrOutOfBounds together with the unclamped coordinates,
// which ClampPixelPos can bring back into range.
func (p *Pixels) WindowPosToPixel(x, y float32) (int, int, error) {
	px, py := p.matrix.SurfaceToTexture(x, y)
	if px < 0 || py < 0 || px >= int(p.textureExtent.Width) || py >= int(p.textureExtent.Height) {
		return px, py, ErrOutOfBounds
	}
	return px, py, nil
}

// ClampPixelPos clamps coordinates to the pixel buffer.
func (p *Pixels) ClampPixelPos(x, y int) (int, int) {
	return min(max(x, 0), int(p.textureExtent.Width)-1),
		min(max(y, 0), int(p.textureExtent.Height)-1)
}

// Close releases every GPU resource and the surface. Devices supplied by
// the host are left alive. Close is idempotent.
func (p *Pixels) Close() error {
	if p.closed {
		return nil
	}
	p.teardown()
	p.closed = true
	return nil
}

func (p *Pixels) teardown() {
	if len(p.inFlight) > 0 {
		p.retire(p.acquireTimeout)
		if n := len(p.inFlight); n > 0 {
			Logger().Warn("pixels: GPU work still in flight at close", "submissions", n)
			p.inFlight = nil
		}
	}
	p.pipeline.Destroy()
	p.scaler = nil

	device := p.gpu.device
	if device != nil {
		if p.textureView != nil {
			device.DestroyTextureView(p.textureView)
			p.textureView = nil
		}
		if p.texture != nil {
			device.DestroyTexture(p.texture)
			p.texture = nil
		}
	}
	p.surface.release(device)
	p.gpu.destroy()
}
