// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixels

import (
	"github.com/gogpu/wgpu/hal"
)

// RenderPass is one stage of the presentation pipeline.
//
// Every pass samples the same pixel buffer texture, which is uploaded once
// per frame before the first pass runs, and records its commands into the
// frame's single command encoder. Passes run in the order they were added,
// after the built-in scaler.
type RenderPass interface {
	// Resize is called with the new physical surface size after the
	// surface has been reconfigured.
	Resize(width, height uint32)

	// Render records the pass into encoder, drawing to target.
	Render(encoder hal.CommandEncoder, target hal.TextureView)
}

// RenderPassFactory creates a RenderPass. It receives the shared device and
// queue, the view of the pixel buffer texture and the texture extent.
type RenderPassFactory func(device hal.Device, queue hal.Queue, texture hal.TextureView, size hal.Extent3D) (RenderPass, error)

// destroyer is implemented by passes that own GPU resources.
type destroyer interface {
	Destroy()
}

// Pipeline is an ordered list of render passes. Execution order is
// insertion order.
type Pipeline struct {
	passes []RenderPass
}

// NewPipeline creates a pipeline running passes in the given order.
func NewPipeline(passes ...RenderPass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Add appends a pass to the end of the pipeline.
func (p *Pipeline) Add(pass RenderPass) {
	p.passes = append(p.passes, pass)
}

// Len returns the number of passes.
func (p *Pipeline) Len() int { return len(p.passes) }

// Passes returns the passes in execution order.
func (p *Pipeline) Passes() []RenderPass {
	out := make([]RenderPass, len(p.passes))
	copy(out, p.passes)
	return out
}

// Resize forwards the surface size to every pass in order.
func (p *Pipeline) Resize(width, height uint32) {
	for _, pass := range p.passes {
		pass.Resize(width, height)
	}
}

// Render records every pass into encoder in order.
func (p *Pipeline) Render(encoder hal.CommandEncoder, target hal.TextureView) {
	for _, pass := range p.passes {
		pass.Render(encoder, target)
	}
}

// Destroy releases passes that own GPU resources, last pass first.
func (p *Pipeline) Destroy() {
	for i := len(p.passes) - 1; i >= 0; i-- {
		if d, ok := p.passes[i].(destroyer); ok {
			d.Destroy()
		}
	}
	p.passes = nil
}
