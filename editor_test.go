package veil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pixelveil/veil/blur"
	"github.com/pixelveil/veil/clip"
	"github.com/pixelveil/veil/input"
	"github.com/pixelveil/veil/surface"
)

// pngBytes encodes a solid w×h image as PNG.
func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode PNG: %v", err)
	}
	return buf.Bytes()
}

// halvesPNG encodes a w×h image, left half black, right half white.
func halvesPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= w/2 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode PNG: %v", err)
	}
	return buf.Bytes()
}

func newTestEditor(opts ...Option) *Editor {
	opts = append([]Option{WithClipboard(clip.NewMemory())}, opts...)
	return NewEditor(opts...)
}

func TestLoadCreatesThreeEqualSurfaces(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(pngBytes(t, 64, 48, color.RGBA{200, 0, 0, 255}), "red.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	set := e.Surfaces()
	if set == nil {
		t.Fatal("no surfaces after load")
	}
	if set.Width() != 64 || set.Height() != 48 {
		t.Errorf("surface size = %dx%d, want 64x48 (natural dimensions)",
			set.Width(), set.Height())
	}
	if got := e.Status(); got.Kind != StatusReady {
		t.Errorf("status = %v, want ready", got)
	}
}

func TestLoadEmptyInput(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(pngBytes(t, 10, 10, color.RGBA{A: 255}), "first.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	prior := e.Surfaces()

	err := e.Load(nil, "empty.bin")
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Load(nil) error = %v, want ErrEmptyInput", err)
	}
	if e.Surfaces() != prior {
		t.Error("prior surfaces replaced on empty input")
	}
	if e.Status().Kind != StatusError {
		t.Errorf("status = %v, want error", e.Status())
	}
}

func TestLoadDecodeFailure(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	err := e.Load([]byte("not an image at all"), "garbage.bin")
	if !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("Load error = %v, want ErrDecodeFailure", err)
	}
	if e.Surfaces() != nil {
		t.Error("surfaces created from undecodable bytes")
	}
}

func TestLoadAsyncSupersededDiscarded(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	first := pngBytes(t, 10, 10, color.RGBA{255, 0, 0, 255})
	second := pngBytes(t, 20, 20, color.RGBA{0, 255, 0, 255})

	done := make(chan error, 1)
	e.LoadAsync(first, "first.png", func(err error) { done <- err })

	// The synchronous load claims a newer generation; whichever order the
	// commits run in, the second load must win.
	if err := e.Load(second, "second.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("LoadAsync done: %v", err)
	}

	set := e.Surfaces()
	if set.Width() != 20 || set.Height() != 20 {
		t.Errorf("surface size = %dx%d, want the newer 20x20 image",
			set.Width(), set.Height())
	}
	r, g, _, _ := set.Original.At(5, 5)
	if r != 0 || g != 255 {
		t.Errorf("pixel = (%d,%d), want the newer green image", r, g)
	}
}

func TestLoadAsyncReportsDecodeError(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	done := make(chan error, 1)
	e.LoadAsync([]byte("junk"), "junk.bin", func(err error) { done <- err })

	if err := <-done; !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("LoadAsync error = %v, want ErrDecodeFailure", err)
	}
}

// TestClickRevealsBlurredDisk is the end-to-end scenario: a 100x100 red
// image at strength 6, one click with a size-20 brush at (50,50). Inside the
// disk Display equals Blurred; outside it stays identical to Original.
func TestClickRevealsBlurredDisk(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(pngBytes(t, 100, 100, color.RGBA{200, 30, 30, 255}), "red.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e.SetBrushSize(20)
	if err := e.SetStrength(6); err != nil {
		t.Fatalf("SetStrength: %v", err)
	}

	if !e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Down, X: 50, Y: 50}) {
		t.Fatal("down event did not paint")
	}
	e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Up})

	set := e.Surfaces()
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			dx, dy := x-50, y-50
			dr, dg, db, da := set.Display.At(x, y)
			if dx*dx+dy*dy <= 100 { // inside the radius-10 disk
				br, bg, bb, ba := set.Blurred.At(x, y)
				if dr != br || dg != bg || db != bb || da != ba {
					t.Fatalf("pixel (%d,%d) inside disk differs from Blurred", x, y)
				}
			} else {
				or, og, ob, oa := set.Original.At(x, y)
				if dr != or || dg != og || db != ob || da != oa {
					t.Fatalf("pixel (%d,%d) outside disk differs from Original", x, y)
				}
			}
		}
	}
}

func TestBrushConfinement(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(halvesPNG(t, 80, 80), "halves.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e.SetBrushSize(MinBrushSize)

	// Paint on the black/white boundary where blur visibly changes pixels.
	e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Down, X: 40, Y: 40})
	e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Up})

	set := e.Surfaces()
	r := MinBrushSize / 2
	changed := false
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			dr, dg, db, da := set.Display.At(x, y)
			or, og, ob, oa := set.Original.At(x, y)
			same := dr == or && dg == og && db == ob && da == oa
			dx, dy := x-40, y-40
			if dx*dx+dy*dy > r*r && !same {
				t.Fatalf("pixel (%d,%d) outside the brush disk changed", x, y)
			}
			if !same {
				changed = true
			}
		}
	}
	if !changed {
		t.Error("brush stroke changed nothing at the contrast boundary")
	}
}

func TestResetRestoresDisplayExactly(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(halvesPNG(t, 60, 60), "halves.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Down, X: 30, Y: 30})
	e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Up})

	if err := e.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	set := e.Surfaces()
	if !bytes.Equal(set.Display.RGBA().Pix, set.Original.RGBA().Pix) {
		t.Error("Display not pixel-identical to Original after Reset")
	}

	// Idempotent.
	if err := e.Reset(); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	if !bytes.Equal(set.Display.RGBA().Pix, set.Original.RGBA().Pix) {
		t.Error("second Reset changed pixels")
	}
}

func TestResetWithoutImage(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Reset(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Reset error = %v, want ErrNoImage", err)
	}
}

func TestBrushIgnoredBeforeLoad(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if e.Router().Handle(input.Event{Kind: input.KindPointer, Type: input.Down, X: 5, Y: 5}) {
		t.Error("down event painted with no image loaded")
	}
}

func TestSetBrushSizeClamps(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if got := e.SetBrushSize(1); got != MinBrushSize {
		t.Errorf("SetBrushSize(1) = %d, want %d", got, MinBrushSize)
	}
	if got := e.SetBrushSize(9999); got != MaxBrushSize {
		t.Errorf("SetBrushSize(9999) = %d, want %d", got, MaxBrushSize)
	}
}

func TestSetStrengthClampsAndRecomputes(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(halvesPNG(t, 40, 40), "halves.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.SetStrength(0); err != nil {
		t.Fatalf("SetStrength: %v", err)
	}
	if got := e.Brush().Strength; got != MinStrength {
		t.Errorf("strength = %d, want clamped to %d", got, MinStrength)
	}

	// Blurred must differ from Original at the contrast boundary.
	set := e.Surfaces()
	br, _, _, _ := set.Blurred.At(20, 20)
	or, _, _, _ := set.Original.At(20, 20)
	if br == or {
		t.Error("Blurred equals Original at the boundary; recompute did not run")
	}
}

func TestStrategyFallbackOnFailure(t *testing.T) {
	// A strategy that always fails must be replaced by the next available
	// one during the initial blur pass.
	blur.Register("failing", 200, func() (blur.Strategy, error) {
		return failingStrategy{}, nil
	}, nil)
	defer blur.Unregister("failing")

	e := newTestEditor()
	defer e.Close()

	if err := e.Load(pngBytes(t, 16, 16, color.RGBA{9, 9, 9, 255}), "img.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if name := e.StrategyName(); name == "failing" || name == "" {
		t.Errorf("active strategy = %q, want a working fallback", name)
	}
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "failing" }
func (failingStrategy) Close()       {}
func (failingStrategy) Recompute(_, _ *surface.Surface, _ int) error {
	return errors.New("boom")
}

func TestExportWithoutImage(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if _, err := e.ExportPNG(); !errors.Is(err, ErrNoImage) {
		t.Errorf("ExportPNG error = %v, want ErrNoImage", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.Load(pngBytes(t, 33, 21, color.RGBA{1, 2, 3, 255}), "img.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := e.ExportPNG()
	if err != nil {
		t.Fatalf("ExportPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode exported PNG: %v", err)
	}
	if img.Bounds().Dx() != 33 || img.Bounds().Dy() != 21 {
		t.Errorf("exported size = %dx%d, want 33x21",
			img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestPasteWithoutImageItem(t *testing.T) {
	m := clip.NewMemory()
	m.Set(clip.Item{Type: "text/plain", Data: []byte("words")})
	e := NewEditor(WithClipboard(m))
	defer e.Close()

	err := e.PasteFromClipboard()
	if !errors.Is(err, clip.ErrEmpty) {
		t.Errorf("PasteFromClipboard error = %v, want clip.ErrEmpty", err)
	}
	if e.Surfaces() != nil {
		t.Error("surfaces changed by an imageless paste")
	}
	// A missing image is a status, not a fault.
	if e.Status().Kind == StatusError {
		t.Errorf("status = %v, want non-error", e.Status())
	}
	if e.Status().Message != "no image on clipboard" {
		t.Errorf("status message = %q", e.Status().Message)
	}
}

func TestPasteLoadsClipboardImage(t *testing.T) {
	m := clip.NewMemory()
	m.Set(clip.Item{Type: "image/png", Data: pngBytes(t, 12, 9, color.RGBA{5, 6, 7, 255})})
	e := NewEditor(WithClipboard(m))
	defer e.Close()

	if err := e.PasteFromClipboard(); err != nil {
		t.Fatalf("PasteFromClipboard: %v", err)
	}
	set := e.Surfaces()
	if set == nil || set.Width() != 12 || set.Height() != 9 {
		t.Fatalf("surfaces after paste = %v", set)
	}
}

func TestCopyToClipboard(t *testing.T) {
	m := clip.NewMemory()
	e := NewEditor(WithClipboard(m))
	defer e.Close()

	if err := e.Load(pngBytes(t, 10, 10, color.RGBA{8, 8, 8, 255}), "img.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.CopyToClipboard(); err != nil {
		t.Fatalf("CopyToClipboard: %v", err)
	}

	items, err := m.Read()
	if err != nil {
		t.Fatalf("backend Read: %v", err)
	}
	if len(items) != 1 || items[0].Type != "image/png" {
		t.Fatalf("clipboard items = %+v, want one image/png item", items)
	}
	if _, err := png.Decode(bytes.NewReader(items[0].Data)); err != nil {
		t.Errorf("clipboard payload is not valid PNG: %v", err)
	}

	snap := e.ClipboardSnapshot()
	if snap.Op != "write" || len(snap.Types) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestCopyWithoutImage(t *testing.T) {
	e := newTestEditor()
	defer e.Close()

	if err := e.CopyToClipboard(); !errors.Is(err, ErrNoImage) {
		t.Errorf("CopyToClipboard error = %v, want ErrNoImage", err)
	}
}

func TestForcedStrategy(t *testing.T) {
	e := newTestEditor(WithStrategy(blur.NameDownscale))
	defer e.Close()

	if err := e.Load(pngBytes(t, 10, 10, color.RGBA{100, 0, 0, 255}), "img.png"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := e.StrategyName(); got != blur.NameDownscale {
		t.Errorf("strategy = %q, want %q", got, blur.NameDownscale)
	}
}
