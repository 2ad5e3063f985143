// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scaler implements the built-in render pass that draws the pixel
// buffer texture onto the surface, magnified by the largest integer factor
// that fits and centered with black borders.
package scaler

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pixels/scaling"
)

// ShaderSource is the embedded WGSL source of the scaler.
//
//go:embed shaders/scale.wgsl
var ShaderSource string

// Config describes the scaler inputs.
type Config struct {
	// TextureWidth and TextureHeight are the pixel buffer size.
	TextureWidth  uint32
	TextureHeight uint32

	// SurfaceWidth and SurfaceHeight are the initial surface size.
	SurfaceWidth  uint32
	SurfaceHeight uint32

	// PixelAspectRatio is the horizontal texel pre-scale. Zero means 1.
	PixelAspectRatio float32

	// TargetFormat is the surface format the pass renders into.
	TargetFormat gputypes.TextureFormat

	// ClearColor fills the borders around the scaled image.
	ClearColor gputypes.Color

	// SPIRV compiles the shader with naga and hands SPIR-V to the HAL
	// instead of WGSL source.
	SPIRV bool
}

// Pass draws the pixel buffer texture scaled onto the render target.
type Pass struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	textureSize      [2]float32
	pixelAspectRatio float32
	clearColor       gputypes.Color
	matrix           scaling.Matrix
}

// New creates the scaler pass sampling texture. The returned pass owns its
// GPU resources; call Destroy to release them.
func New(device hal.Device, queue hal.Queue, texture hal.TextureView, cfg Config) (*Pass, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("scaler: nil device or queue")
	}
	if cfg.PixelAspectRatio == 0 {
		cfg.PixelAspectRatio = 1
	}

	p := &Pass{
		device:           device,
		queue:            queue,
		textureSize:      [2]float32{float32(cfg.TextureWidth), float32(cfg.TextureHeight)},
		pixelAspectRatio: cfg.PixelAspectRatio,
		clearColor:       cfg.ClearColor,
	}
	if err := p.createPipeline(cfg.TargetFormat, cfg.SPIRV); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.createBindGroup(texture); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.writeMatrix(p.computeMatrix(cfg.SurfaceWidth, cfg.SurfaceHeight)); err != nil {
		p.Destroy()
		return nil, err
	}

	slogger().Debug("scaler: created",
		"texture_width", cfg.TextureWidth,
		"texture_height", cfg.TextureHeight,
		"target_format", cfg.TargetFormat,
	)
	return p, nil
}

// CompileSPIRV compiles the scaler shader to SPIR-V words.
func CompileSPIRV() ([]uint32, error) {
	spirvBytes, err := naga.Compile(ShaderSource)
	if err != nil {
		return nil, fmt.Errorf("scaler: compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("scaler: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

func (p *Pass) createPipeline(format gputypes.TextureFormat, spirv bool) error {
	source := hal.ShaderSource{WGSL: ShaderSource}
	if spirv {
		words, err := CompileSPIRV()
		if err != nil {
			return err
		}
		source = hal.ShaderSource{SPIRV: words}
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "pixels_scaler_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("scaler: create shader module: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pixels_scaler_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("scaler: create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "pixels_scaler_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("scaler: create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "pixels_scaler_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("scaler: create render pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

func (p *Pass) createBindGroup(texture hal.TextureView) error {
	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pixels_scaler_uniform",
		Size:  scaling.Mat4Size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("scaler: create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "pixels_scaler_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: scaling.Mat4Size,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: texture.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("scaler: create bind group: %w", err)
	}
	p.bindGroup = bindGroup
	return nil
}

// Matrix returns the current scaling matrix.
func (p *Pass) Matrix() scaling.Matrix { return p.matrix }

// Resize recomputes the scaling matrix for the new surface size and uploads
// it to the uniform buffer.
// A failed upload is logged and leaves the previous matrix in place.
func (p *Pass) Resize(width, height uint32) {
	if err := p.writeMatrix(p.computeMatrix(width, height)); err != nil {
		slogger().Warn("scaler: transform upload failed", "err", err)
		return
	}
	slogger().Debug("scaler: resized",
		"surface_width", width,
		"surface_height", height,
		"scale", p.matrix.Scale,
	)
}

func (p *Pass) computeMatrix(width, height uint32) scaling.Matrix {
	return scaling.New(p.textureSize, [2]float32{float32(width), float32(height)}, p.pixelAspectRatio)
}

func (p *Pass) writeMatrix(m scaling.Matrix) error {
	if err := p.queue.WriteBuffer(p.uniformBuf, 0, m.Transform.Bytes()); err != nil {
		return fmt.Errorf("scaler: write transform: %w", err)
	}
	p.matrix = m
	return nil
}

// Render clears target and draws the scaled pixel buffer into it.
func (p *Pass) Render(encoder hal.CommandEncoder, target hal.TextureView) {
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "pixels_scaler_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: p.clearColor,
		}},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.Draw(6, 1, 0, 0)
	rp.End()
}

// Destroy releases all GPU resources in reverse creation order.
func (p *Pass) Destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
