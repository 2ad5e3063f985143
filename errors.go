package pixels

import "errors"

// Sentinel errors returned by pixels. Use errors.Is to test for them; most
// are wrapped with the underlying HAL or host error.
var (
	// ErrAdapterNotFound is returned by Build when no compatible GPU adapter
	// exists on any requested backend. No Pixels is returned.
	ErrAdapterNotFound = errors.New("pixels: no compatible GPU adapter found")

	// ErrTimeout is returned by Render when the surface did not provide a
	// presentable frame in time. The frame is skipped and may be retried.
	ErrTimeout = errors.New("pixels: timed out acquiring surface frame")

	// ErrSurfaceStale is returned by Render when the surface needs to be
	// resized before the next frame.
	ErrSurfaceStale = errors.New("pixels: surface is stale, call Resize before Render")

	// ErrSurfaceOutdated is wrapped by host Surface implementations when
	// the window surface no longer matches its configuration (lost or
	// outdated swap chain). Render marks the surface stale on it.
	ErrSurfaceOutdated = errors.New("pixels: surface outdated")

	// ErrClosed is returned by operations on a closed Pixels.
	ErrClosed = errors.New("pixels: closed")

	// ErrOutOfBounds is returned by WindowPosToPixel for positions outside
	// the pixel buffer. The signed coordinates are still returned.
	ErrOutOfBounds = errors.New("pixels: position outside pixel buffer")

	// ErrUnsupportedFormat is returned by Build for texture formats with an
	// unknown texel size.
	ErrUnsupportedFormat = errors.New("pixels: unsupported texture format")

	// ErrNoHALDevice is returned by Build when a DeviceProvider does not
	// expose HAL device and queue handles.
	ErrNoHALDevice = errors.New("pixels: device provider does not expose HAL types")
)
