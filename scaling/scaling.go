// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scaling computes the transform that places a fixed-resolution
// pixel texture on a presentation surface of arbitrary size.
//
// The texture is magnified by the largest integer factor that still fits the
// surface on both axes and is centered in normalized device coordinates, so
// the forward matrix is a pure scale. When the surface is smaller than the
// texture no integer factor fits; the texture is then shrunk by the real
// valued factor of the limiting axis instead.
//
// Both directions are kept together:
//
//	m := scaling.New([2]float32{320, 240}, [2]float32{1024, 768}, 1)
//	m.Scale     // 3
//	m.Transform // uploaded to the scaler shader
//	m.Inverse   // used to map window positions back to texels
package scaling

import (
	"fmt"
	"math"
)

// Matrix is the scaling transform between a texture and a surface.
type Matrix struct {
	// Transform maps texture quad positions to normalized device coordinates.
	Transform Mat4

	// Inverse is the exact inverse of Transform.
	Inverse Mat4

	// TextureSize is the logical texture extent (width, height).
	TextureSize [2]float32

	// SurfaceSize is the physical surface extent (width, height).
	SurfaceSize [2]float32

	// PixelAspectRatio is the horizontal pre-scale applied to texels.
	PixelAspectRatio float32

	// Scale is the magnification applied to the texture. It is an integer
	// unless the surface is smaller than the texture.
	Scale float32
}

// New computes the scaling matrix for the given texture and surface extents.
//
// Every extent component and pixelAspectRatio must be greater than zero;
// New panics otherwise, as it does if the resulting transform is singular.
func New(texture, surface [2]float32, pixelAspectRatio float32) Matrix {
	if !(texture[0] > 0 && texture[1] > 0) {
		panic(fmt.Sprintf("scaling: invalid texture size %vx%v", texture[0], texture[1]))
	}
	if !(surface[0] > 0 && surface[1] > 0) {
		panic(fmt.Sprintf("scaling: invalid surface size %vx%v", surface[0], surface[1]))
	}
	if !(pixelAspectRatio > 0) {
		panic(fmt.Sprintf("scaling: invalid pixel aspect ratio %v", pixelAspectRatio))
	}

	tw := texture[0] * pixelAspectRatio
	th := texture[1]
	sw, sh := surface[0], surface[1]

	fit := min(sw/tw, sh/th)
	scale := float32(math.Floor(float64(fit)))
	if scale < 1 {
		scale = fit
	}

	transform := Scale(scale*tw/sw, scale*th/sh, 1)
	inverse, ok := transform.Invert()
	if !ok {
		panic("scaling: singular transform")
	}

	return Matrix{
		Transform:        transform,
		Inverse:          inverse,
		TextureSize:      texture,
		SurfaceSize:      surface,
		PixelAspectRatio: pixelAspectRatio,
		Scale:            scale,
	}
}

// Viewport returns the rectangle of the surface covered by the scaled
// texture, in physical pixels. Margins are equal on opposite sides and are
// not snapped to whole pixels.
func (m Matrix) Viewport() (x, y, width, height float32) {
	width = m.Scale * m.TextureSize[0] * m.PixelAspectRatio
	height = m.Scale * m.TextureSize[1]
	x = (m.SurfaceSize[0] - width) / 2
	y = (m.SurfaceSize[1] - height) / 2
	return x, y, width, height
}

// SurfaceToTexture maps a physical surface position to texel coordinates.
// The result is not bounds checked and is negative or past the texture edge
// for positions inside the margins or outside the surface.
func (m Matrix) SurfaceToTexture(x, y float32) (int, int) {
	tw, th := m.TextureSize[0], m.TextureSize[1]
	nx := (x/m.SurfaceSize[0] - 0.5) * tw
	ny := (y/m.SurfaceSize[1] - 0.5) * th

	px, py := m.Inverse.TransformPoint(nx, ny)
	px += tw / 2
	py += th / 2

	return int(math.Floor(float64(px))), int(math.Floor(float64(py)))
}

// TextureToSurface maps texel coordinates to the physical surface position
// of the texel's top-left corner.
func (m Matrix) TextureToSurface(px, py float32) (float32, float32) {
	tw, th := m.TextureSize[0], m.TextureSize[1]
	nx, ny := m.Transform.TransformPoint(px-tw/2, py-th/2)
	return (nx/tw + 0.5) * m.SurfaceSize[0], (ny/th + 0.5) * m.SurfaceSize[1]
}
