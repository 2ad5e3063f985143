package pixels

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// FrameRGBA returns the pixel buffer as an *image.RGBA sharing its memory.
// It reports false for formats that are not 8-bit RGBA.
func (p *Pixels) FrameRGBA() (*image.RGBA, bool) {
	if !isRGBA8(p.textureFormat) {
		return nil, false
	}
	w, h := int(p.textureExtent.Width), int(p.textureExtent.Height)
	return &image.RGBA{
		Pix:    p.frame,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, true
}

// DrawImage scales src into the rectangle dr of the pixel buffer using
// nearest-neighbour sampling, replacing what was there. An empty dr means
// the whole buffer. Only 8-bit RGBA formats are supported.
func (p *Pixels) DrawImage(src image.Image, dr image.Rectangle) error {
	dst, ok := p.FrameRGBA()
	if !ok {
		return fmt.Errorf("%w: DrawImage needs an RGBA8 pixel buffer, have %v", ErrUnsupportedFormat, p.textureFormat)
	}
	if dr.Empty() {
		dr = dst.Bounds()
	}
	xdraw.NearestNeighbor.Scale(dst, dr, src, src.Bounds(), xdraw.Src, nil)
	return nil
}

// Clear sets every byte of the pixel buffer to v.
func (p *Pixels) Clear(v byte) {
	for i := range p.frame {
		p.frame[i] = v
	}
}
