// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixels

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Surface is a presentable window surface owned by the host application.
//
// pixels does not create windows. The host (for example a gogpu window)
// implements Surface over its swap chain and hands it to NewSurfaceTexture.
// pixels configures the surface whenever its size or present mode changes
// and acquires exactly one frame per Render call.
type Surface interface {
	// Configure (re)creates the swap chain for the given configuration.
	Configure(device hal.Device, config SurfaceConfig) error

	// Unconfigure releases the swap chain. The surface is not used again.
	Unconfigure(device hal.Device)

	// AcquireFrame returns the next presentable frame, waiting at most
	// timeout. Implementations wrap ErrSurfaceOutdated when the surface
	// must be reconfigured; any other error is treated as a timeout.
	AcquireFrame(timeout time.Duration) (SurfaceFrame, error)
}

// SurfaceFrame is a single acquired swap chain image.
type SurfaceFrame interface {
	// View returns the render target for this frame.
	View() hal.TextureView

	// Present queues the frame for display after all submitted work.
	Present(queue hal.Queue) error

	// Discard releases the frame without presenting it.
	Discard()
}

// SurfaceConfig describes a swap chain configuration.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	PresentMode PresentMode
}

// PresentMode controls when rendered frames become visible.
type PresentMode uint8

const (
	// PresentModeFifo waits for vertical blank; frames are never dropped.
	PresentModeFifo PresentMode = iota

	// PresentModeImmediate presents without waiting; tearing is possible.
	PresentModeImmediate

	// PresentModeMailbox waits for vertical blank but replaces queued frames.
	PresentModeMailbox

	// PresentModeFifoRelaxed is Fifo that tears when a frame is late.
	PresentModeFifoRelaxed
)

// String returns the present mode name.
func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "Fifo"
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	case PresentModeFifoRelaxed:
		return "FifoRelaxed"
	default:
		return fmt.Sprintf("PresentMode(%d)", m)
	}
}

// SurfaceState is the lifecycle state of a SurfaceTexture.
type SurfaceState uint8

const (
	// SurfaceUninitialized is the state before the first configuration.
	SurfaceUninitialized SurfaceState = iota

	// SurfaceReady means the swap chain matches the current size.
	SurfaceReady

	// SurfaceStale means the swap chain must be recreated by Resize.
	SurfaceStale

	// SurfaceReleased is terminal.
	SurfaceReleased
)

// String returns the state name.
func (s SurfaceState) String() string {
	switch s {
	case SurfaceUninitialized:
		return "Uninitialized"
	case SurfaceReady:
		return "Ready"
	case SurfaceStale:
		return "Stale"
	case SurfaceReleased:
		return "Released"
	default:
		return fmt.Sprintf("SurfaceState(%d)", s)
	}
}

// SurfaceTexture pairs a host Surface with its physical size and tracks
// whether the swap chain is usable.
type SurfaceTexture struct {
	surface Surface
	width   uint32
	height  uint32
	state   SurfaceState
	config  SurfaceConfig
}

// NewSurfaceTexture wraps surface with the given physical size.
// It panics if surface is nil or either dimension is zero.
func NewSurfaceTexture(width, height uint32, surface Surface) *SurfaceTexture {
	if surface == nil {
		panic("pixels: nil surface")
	}
	if width == 0 || height == 0 {
		panic(fmt.Sprintf("pixels: invalid surface size %dx%d", width, height))
	}
	return &SurfaceTexture{surface: surface, width: width, height: height}
}

// Width returns the physical surface width.
func (s *SurfaceTexture) Width() uint32 { return s.width }

// Height returns the physical surface height.
func (s *SurfaceTexture) Height() uint32 { return s.height }

// State returns the lifecycle state.
func (s *SurfaceTexture) State() SurfaceState { return s.state }

// Config returns the last applied configuration.
func (s *SurfaceTexture) Config() SurfaceConfig { return s.config }

// configure applies config to the host surface. On success the surface is
// Ready; on failure its state is unchanged.
func (s *SurfaceTexture) configure(device hal.Device, config SurfaceConfig) error {
	if s.state == SurfaceReleased {
		return ErrClosed
	}
	if err := s.surface.Configure(device, config); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", config.Width, config.Height, err)
	}
	s.width, s.height = config.Width, config.Height
	s.config = config
	s.state = SurfaceReady
	return nil
}

func (s *SurfaceTexture) markStale() {
	if s.state == SurfaceReady {
		s.state = SurfaceStale
	}
}

func (s *SurfaceTexture) release(device hal.Device) {
	if s.state == SurfaceReleased {
		return
	}
	if s.state != SurfaceUninitialized {
		s.surface.Unconfigure(device)
	}
	s.state = SurfaceReleased
}
