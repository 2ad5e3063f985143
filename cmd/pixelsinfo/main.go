// Command pixelsinfo lists GPU adapters and shows how a pixel buffer would
// be scaled onto a surface.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/pixels"
	"github.com/gogpu/pixels/scaling"
)

func main() {
	var (
		backend       = flag.String("backend", "vulkan", "HAL backend: vulkan or noop")
		width         = flag.Uint("width", 320, "pixel buffer width")
		height        = flag.Uint("height", 240, "pixel buffer height")
		surfaceWidth  = flag.Uint("surface-width", 1024, "surface width")
		surfaceHeight = flag.Uint("surface-height", 768, "surface height")
		par           = flag.Float64("par", 1, "pixel aspect ratio")
		verbose       = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		pixels.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *width == 0 || *height == 0 || *surfaceWidth == 0 || *surfaceHeight == 0 || *par <= 0 {
		log.Fatal("sizes and pixel aspect ratio must be positive")
	}

	if err := listAdapters(*backend); err != nil {
		log.Printf("Adapters: %v", err)
	}

	m := scaling.New(
		[2]float32{float32(*width), float32(*height)},
		[2]float32{float32(*surfaceWidth), float32(*surfaceHeight)},
		float32(*par),
	)
	printMatrix(m)
}

func createInstance(name string) (hal.Instance, error) {
	switch name {
	case "noop":
		api := noop.API{}
		return api.CreateInstance(nil)
	case "vulkan":
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("vulkan backend not available")
		}
		return b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func listAdapters(backend string) error {
	instance, err := createInstance(backend)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	pref := pixels.DefaultPowerPreference()
	selected := pixels.SelectAdapter(adapters, pref)

	fmt.Printf("Backend: %s\n", backend)
	fmt.Printf("Power preference: %s (%s, %s)\n", pref, pixels.EnvHighPerformance, pixels.EnvLowPower)
	for i := range adapters {
		mark := " "
		if &adapters[i] == selected {
			mark = "*"
		}
		fmt.Printf("%s [%d] %s (%v)\n", mark, i, adapters[i].Info.Name, adapters[i].Info.DeviceType)
	}
	if selected == nil {
		return fmt.Errorf("%w on %s", pixels.ErrAdapterNotFound, backend)
	}
	return nil
}

func printMatrix(m scaling.Matrix) {
	x, y, w, h := m.Viewport()
	fmt.Printf("\nTexture %gx%g on surface %gx%g (pixel aspect %g)\n",
		m.TextureSize[0], m.TextureSize[1], m.SurfaceSize[0], m.SurfaceSize[1], m.PixelAspectRatio)
	fmt.Printf("Scale: %g\n", m.Scale)
	fmt.Printf("Viewport: x=%g y=%g w=%g h=%g\n", x, y, w, h)
	fmt.Println("Transform:")
	for row := 0; row < 4; row++ {
		fmt.Printf("  % 8.4f % 8.4f % 8.4f % 8.4f\n",
			m.Transform.At(row, 0), m.Transform.At(row, 1), m.Transform.At(row, 2), m.Transform.At(row, 3))
	}
}
