// Command veil demonstrates the blur-brush editor core: load an image, blur
// it at the configured strength, replay brush strokes, then export the
// result as PNG and optionally copy it to the system clipboard.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/pixelveil/veil"
	"github.com/pixelveil/veil/blur"
	"github.com/pixelveil/veil/input"

	// Enable the GPU blur strategy when a device is available.
	_ "github.com/pixelveil/veil/blur/gpu"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "input image file (png/jpeg/gif/bmp/tiff/webp)")
		outputPath = flag.String("output", "out.png", "output PNG file")
		configPath = flag.String("config", "", "optional TOML config file")
		scriptPath = flag.String("script", "", "optional YAML stroke script")
		brushSize  = flag.Int("brush", 0, "brush diameter in px (overrides config)")
		strength   = flag.Int("strength", 0, "blur strength in px (overrides config)")
		doCopy     = flag.Bool("copy", false, "copy the result to the system clipboard")
		doPaste    = flag.Bool("paste", false, "load the image from the clipboard instead of -input")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := cfg.level()
	if *verbose {
		level = slog.LevelDebug
	}
	veil.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	var opts []veil.Option
	if cfg.Strategy != "" {
		opts = append(opts, veil.WithStrategy(cfg.Strategy))
	}
	ed := veil.NewEditor(opts...)
	defer ed.Close()

	switch {
	case *doPaste:
		if err := ed.PasteFromClipboard(); err != nil {
			log.Fatalf("Failed to paste: %v (%s)", err, ed.ClipboardSnapshot().Summary())
		}
	case *inputPath != "":
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *inputPath, err)
		}
		if err := ed.Load(data, *inputPath); err != nil {
			log.Fatalf("Failed to load image: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	size := cfg.BrushSize
	if *brushSize > 0 {
		size = *brushSize
	}
	ed.SetBrushSize(size)

	str := cfg.Strength
	if *strength > 0 {
		str = *strength
	}
	if err := ed.SetStrength(str); err != nil {
		log.Fatalf("Failed to set strength: %v", err)
	}

	applied := runStrokes(ed, *scriptPath)

	data, err := ed.ExportPNG()
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outputPath, err)
	}

	if *doCopy {
		if err := ed.CopyToClipboard(); err != nil {
			log.Fatalf("Failed to copy to clipboard: %v", err)
		}
	}

	set := ed.Surfaces()
	log.Printf("Saved %s (%dx%d, strategy %s, %d brush applications, strategies: %v)",
		*outputPath, set.Width(), set.Height(), ed.StrategyName(), applied, blur.Available())
}

// runStrokes replays the script when given, otherwise drags a single
// horizontal stroke across the middle of the image.
func runStrokes(ed *veil.Editor, scriptPath string) int {
	if scriptPath != "" {
		script, err := loadScript(scriptPath)
		if err != nil {
			log.Fatalf("Failed to load script: %v", err)
		}
		return script.Run(ed.Router())
	}

	set := ed.Surfaces()
	w, h := set.Width(), set.Height()
	r := ed.Router()

	applied := 0
	y := float64(h) / 2
	if r.Handle(input.Event{Kind: input.KindPointer, Type: input.Down, X: float64(w) / 10, Y: y}) {
		applied++
	}
	for x := w / 10; x <= w*9/10; x += ed.Brush().Size / 2 {
		if r.Handle(input.Event{Kind: input.KindPointer, Type: input.Move, X: float64(x), Y: y}) {
			applied++
		}
	}
	r.Handle(input.Event{Kind: input.KindPointer, Type: input.Up})
	return applied
}
