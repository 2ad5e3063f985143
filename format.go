package pixels

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// DefaultTextureFormat is the pixel buffer format used when none is set:
// four bytes per pixel, sRGB encoded RGBA.
const DefaultTextureFormat = gputypes.TextureFormatRGBA8UnormSrgb

// DefaultSurfaceFormat is the presentation surface format used when neither
// the builder nor a DeviceProvider names one.
const DefaultSurfaceFormat = gputypes.TextureFormatBGRA8Unorm

// TextureFormatSize returns the number of bytes per texel for a pixel buffer
// format. Only uncompressed, non-depth formats can back a pixel buffer.
func TextureFormatSize(format gputypes.TextureFormat) (uint32, error) {
	switch format {
	case gputypes.TextureFormatR8Unorm,
		gputypes.TextureFormatR8Snorm:
		return 1, nil
	case gputypes.TextureFormatRG8Unorm,
		gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatR16Float:
		return 2, nil
	case gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm,
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Unorm,
		gputypes.TextureFormatRG11B10Ufloat,
		gputypes.TextureFormatRG16Float,
		gputypes.TextureFormatR32Float:
		return 4, nil
	case gputypes.TextureFormatRGBA16Float,
		gputypes.TextureFormatRG32Float:
		return 8, nil
	case gputypes.TextureFormatRGBA32Float:
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// isRGBA8 reports whether format stores one byte per channel in R, G, B, A
// order, the layout of image.RGBA.
func isRGBA8(format gputypes.TextureFormat) bool {
	return format == gputypes.TextureFormatRGBA8Unorm ||
		format == gputypes.TextureFormatRGBA8UnormSrgb
}
