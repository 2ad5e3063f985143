// Package pixels provides a GPU-backed pixel buffer for Go.
//
// # Overview
//
// pixels gives an application a fixed-resolution frame buffer it can write
// bytes into and presents that buffer on a window surface of any size. The
// buffer is uploaded to a GPU texture every frame, magnified by the largest
// integer factor that fits the window, centered, and optionally run through
// further render passes before being presented.
//
// It is built on gogpu/wgpu's HAL and is meant for emulators, pixel art
// editors and software renderers that want crisp scaling without writing
// any GPU code.
//
// # Quick Start
//
//	surface := pixels.NewSurfaceTexture(windowWidth, windowHeight, hostSurface)
//	p, err := pixels.New(320, 240, surface)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	for running {
//	    frame := p.Frame() // 320*240*4 bytes of sRGB RGBA
//	    draw(frame)
//	    if err := p.Render(); errors.Is(err, pixels.ErrSurfaceStale) {
//	        p.Resize(window.Size())
//	    }
//	}
//
// pixels does not open windows. The host application implements [Surface]
// over its swap chain and calls [Pixels.Resize] when the window changes
// size.
//
// # Render Passes
//
// The built-in scaler is always the first pass. Additional passes created
// with [Builder.AddRenderPass] run after it, in the order they were added,
// and all of them sample the same pixel buffer texture.
//
// # Input Coordinates
//
// [Pixels.WindowPosToPixel] maps a cursor position to a pixel in the
// buffer using the inverse of the scaling transform. Positions in the black
// borders are reported with [ErrOutOfBounds]; [Pixels.ClampPixelPos] snaps
// them back to the nearest edge pixel.
//
// # Adapter Selection
//
// Unless [Builder.RequestAdapterOptions] is used, the presence of the
// PIXELS_HIGH_PERF environment variable selects a discrete GPU and
// PIXELS_LOW_POWER an integrated one. PIXELS_HIGH_PERF takes precedence.
package pixels

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
