package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/scene"
)

func newTestSurface(t *testing.T, w, h int) Surface {
	t.Helper()
	fonts, err := NewFontLibrary("", zap.NewNop())
	if err != nil {
		t.Fatalf("NewFontLibrary: %v", err)
	}
	engine := NewGGEngine(fonts, zap.NewNop())
	surface, err := engine.CreateSurface(w, h)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	t.Cleanup(func() { surface.Close() })
	return surface
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeExport(t *testing.T, surface Surface) image.Image {
	t.Helper()
	data, err := surface.ExportPNG()
	if err != nil {
		t.Fatalf("ExportPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode exported png: %v", err)
	}
	return img
}

func TestCreateSurfaceRejectsBadDimensions(t *testing.T) {
	fonts, _ := NewFontLibrary("", zap.NewNop())
	engine := NewGGEngine(fonts, zap.NewNop())
	if _, err := engine.CreateSurface(0, 100); err == nil {
		t.Errorf("expected error for zero width")
	}
	if _, err := engine.CreateSurface(100, -1); err == nil {
		t.Errorf("expected error for negative height")
	}
}

func TestApplySceneRendersEveryKind(t *testing.T) {
	surface := newTestSurface(t, 400, 200)

	sc := scene.New(400, 200)
	sc.Add(&scene.Image{
		Base:  scene.Base{ID: "img", Left: 10, Top: 10, Opacity: 1},
		Src:   pngDataURI(t, 40, 30),
		Width: 40, Height: 30, Scale: 1,
	})
	sc.Add(&scene.Text{
		Base:       scene.Base{ID: "txt", Left: 60, Top: 20, Opacity: 1},
		Content:    "Your Text Here",
		FontFamily: "Arial, sans-serif",
		FontSize:   24,
		Fill:       "#000000",
		Align:      scene.AlignCenter,
		Width:      200,
	})
	sc.Add(&scene.Rect{
		Base:  scene.Base{ID: "rect", Left: 5, Top: 100, Opacity: 1},
		Width: 80, Height: 50, Fill: "#1e3a5f", Stroke: "#000000", StrokeWidth: 2, CornerRadius: 5,
	})
	sc.Add(&scene.Ellipse{
		Base:    scene.Base{ID: "ell", Left: 150, Top: 100, Opacity: 1, Rotation: 30},
		RadiusX: 40, RadiusY: 25, Fill: "#b91c1c",
	})
	sc.Add(&scene.Line{
		Base: scene.Base{ID: "line", Left: 250, Top: 150, Opacity: 1, FlipX: true},
		X2:   100, Y2: 20, Stroke: "#000000", StrokeWidth: 3,
	})

	if err := surface.ApplyScene(sc); err != nil {
		t.Fatalf("ApplyScene: %v", err)
	}

	img := decodeExport(t, surface)
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 200 {
		t.Errorf("exported image is %v, expected 400x200", img.Bounds())
	}
}

func TestApplySceneFillsBackground(t *testing.T) {
	surface := newTestSurface(t, 50, 40)

	sc := scene.New(50, 40)
	sc.Background = "#ff0000"
	if err := surface.ApplyScene(sc); err != nil {
		t.Fatalf("ApplyScene: %v", err)
	}

	img := decodeExport(t, surface)
	r, g, b, _ := img.At(25, 20).RGBA()
	if r>>8 != 0xff || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected pure red background, got %d/%d/%d", r>>8, g>>8, b>>8)
	}
}

func TestApplySceneRendersShapePixels(t *testing.T) {
	surface := newTestSurface(t, 100, 100)

	sc := scene.New(100, 100)
	sc.Add(&scene.Rect{
		Base:  scene.Base{ID: "r", Left: 20, Top: 20, Opacity: 1},
		Width: 60, Height: 60, Fill: "#000000",
	})
	if err := surface.ApplyScene(sc); err != nil {
		t.Fatalf("ApplyScene: %v", err)
	}

	img := decodeExport(t, surface)
	r, g, b, _ := img.At(50, 50).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected black pixel inside rect, got %d/%d/%d", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(5, 5).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("expected white pixel outside rect, got %d/%d/%d", r>>8, g>>8, b>>8)
	}
}

func TestApplySceneInvalidColor(t *testing.T) {
	surface := newTestSurface(t, 50, 50)

	sc := scene.New(50, 50)
	sc.Background = "not-a-color"
	if err := surface.ApplyScene(sc); err == nil {
		t.Errorf("expected error for invalid background color")
	}
}

func TestApplySceneBadImageData(t *testing.T) {
	surface := newTestSurface(t, 50, 50)

	sc := scene.New(50, 50)
	sc.Add(&scene.Image{
		Base:  scene.Base{ID: "img", Opacity: 1},
		Src:   "data:image/png;base64,!!!not-base64!!!",
		Width: 10, Height: 10, Scale: 1,
	})
	if err := surface.ApplyScene(sc); err == nil {
		t.Errorf("expected error for undecodable image")
	}
}

func TestResizeKeepsElementCoordinates(t *testing.T) {
	surface := newTestSurface(t, 200, 100)

	if err := surface.Resize(300, 150); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	w, h := surface.Bounds()
	if w != 300 || h != 150 {
		t.Errorf("expected 300x150 after resize, got %dx%d", w, h)
	}

	img := decodeExport(t, surface)
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 150 {
		t.Errorf("export should reflect new bounds, got %v", img.Bounds())
	}
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	surface := newTestSurface(t, 50, 50)

	if err := surface.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := surface.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := surface.ApplyScene(scene.New(50, 50)); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("expected ErrSurfaceClosed, got %v", err)
	}
	if _, err := surface.ExportPNG(); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("expected ErrSurfaceClosed, got %v", err)
	}
}

// fakeElement is a kind the renderer does not know about.
type fakeElement struct{ scene.Base }

func (e *fakeElement) Kind() scene.Kind      { return scene.Kind("sticker") }
func (e *fakeElement) Clone() scene.Element  { c := *e; return &c }

func TestApplySceneUnsupportedKind(t *testing.T) {
	surface := newTestSurface(t, 50, 50)

	sc := scene.New(50, 50)
	sc.Add(&fakeElement{scene.Base{ID: "x", Opacity: 1}})
	if err := surface.ApplyScene(sc); !errors.Is(err, ErrUnsupportedElementKind) {
		t.Errorf("expected ErrUnsupportedElementKind, got %v", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	uri := pngDataURI(t, 8, 6)
	img, err := decodeDataURI(uri)
	if err != nil {
		t.Fatalf("decodeDataURI: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("decoded bounds %v, expected 8x6", img.Bounds())
	}

	// bare base64 without the data: prefix is accepted too
	i := bytes.IndexByte([]byte(uri), ',')
	if _, err := decodeDataURI(uri[i+1:]); err != nil {
		t.Errorf("bare base64 payload should decode: %v", err)
	}

	if _, err := decodeDataURI("data:image/png;base64"); err == nil {
		t.Errorf("expected error for data uri without payload separator")
	}
	if _, err := decodeDataURI("data:image/png;base64,AAAA"); err == nil {
		t.Errorf("expected error for payload that is not a bitmap")
	}
}

func TestParseHexColorForms(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b float64
		ok      bool
	}{
		{"#fff", 1, 1, 1, true},
		{"#000000", 0, 0, 0, true},
		{"#ff0000", 1, 0, 0, true},
		{"#ff000080", 1, 0, 0, true},
		{"red", 0, 0, 0, false},
		{"#12345", 0, 0, 0, false},
	}
	for _, c := range cases {
		r, g, b, err := parseHexColor(c.in)
		if c.ok && err != nil {
			t.Errorf("parseHexColor(%q): %v", c.in, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("parseHexColor(%q): expected error", c.in)
			}
			continue
		}
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("parseHexColor(%q) = %v/%v/%v", c.in, r, g, b)
		}
	}
}

func TestFontFamilyFallbacks(t *testing.T) {
	fonts, err := NewFontLibrary("", zap.NewNop())
	if err != nil {
		t.Fatalf("NewFontLibrary: %v", err)
	}

	// every catalog family resolves to some usable face
	for _, family := range []string{"Arial, sans-serif", `"Times New Roman", Times, serif`, "Impact, Charcoal, sans-serif", "unknown-font"} {
		if face := fonts.Face(family, false, false, 32); face == nil {
			t.Errorf("no face for family %q", family)
		}
		if face := fonts.Face(family, true, true, 32); face == nil {
			t.Errorf("no bold italic face for family %q", family)
		}
	}
}
