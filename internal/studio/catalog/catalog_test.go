package catalog

import (
	"errors"
	"testing"
)

func TestAllSizesShareTwoFootHeight(t *testing.T) {
	sizes := All()
	if len(sizes) != 3 {
		t.Fatalf("expected 3 sizes, got %d", len(sizes))
	}
	for _, s := range sizes {
		if s.HeightUnits != 24 {
			t.Errorf("size %s: expected 24 inch height, got %d", s.ID, s.HeightUnits)
		}
	}
}

func TestSizeForKnownAndUnknown(t *testing.T) {
	s, err := SizeFor("medium")
	if err != nil {
		t.Fatalf("SizeFor(medium): %v", err)
	}
	if s.WidthUnits != 78 || !s.Recommended {
		t.Errorf("unexpected medium size: %+v", s)
	}

	if _, err := SizeFor("jumbo"); !errors.Is(err, ErrSizeNotFound) {
		t.Errorf("expected ErrSizeNotFound, got %v", err)
	}
}

func TestDefaultIsRecommended(t *testing.T) {
	if Default().ID != "medium" {
		t.Errorf("expected medium as default, got %s", Default().ID)
	}
}

func TestDeriveDimensionsStandardContainer(t *testing.T) {
	size, _ := SizeFor("medium")
	w, h, err := DeriveDimensions(900, size)
	if err != nil {
		t.Fatalf("DeriveDimensions: %v", err)
	}
	// (900-48)=852 wide, 852/(78/24)=262.15 -> floor 262
	if w != 852 || h != 262 {
		t.Errorf("expected 852x262, got %dx%d", w, h)
	}
}

func TestDeriveDimensionsCapsHeight(t *testing.T) {
	size, _ := SizeFor("small") // ratio 2.75
	w, h, err := DeriveDimensions(2000, size)
	if err != nil {
		t.Fatalf("DeriveDimensions: %v", err)
	}
	if h != 400 {
		t.Errorf("height must cap at 400, got %d", h)
	}
	if w != 1100 { // 400*2.75
		t.Errorf("width should derive from capped height, got %d", w)
	}
}

func TestDeriveDimensionsIsDeterministic(t *testing.T) {
	size, _ := SizeFor("large")
	w1, h1, _ := DeriveDimensions(1234, size)
	w2, h2, _ := DeriveDimensions(1234, size)
	if w1 != w2 || h1 != h2 {
		t.Errorf("same input must give same output: %dx%d vs %dx%d", w1, h1, w2, h2)
	}
}

func TestDeriveDimensionsMatchesFormula(t *testing.T) {
	for _, s := range All() {
		for _, cw := range []int{400, 700, 900, 1400, 2500} {
			w, h, err := DeriveDimensions(cw, s)
			if err != nil {
				t.Fatalf("DeriveDimensions(%d, %s): %v", cw, s.ID, err)
			}
			fw := float64(cw - 48)
			fh := fw / s.Ratio()
			if fh > 400 {
				fh = 400
				fw = fh * s.Ratio()
			}
			if w != int(fw) || h != int(fh) {
				t.Errorf("%s@%d: expected %dx%d, got %dx%d", s.ID, cw, int(fw), int(fh), w, h)
			}
		}
	}
}

func TestDeriveDimensionsRejectsTinyContainer(t *testing.T) {
	size, _ := SizeFor("medium")
	if _, _, err := DeriveDimensions(48, size); err == nil {
		t.Errorf("expected error for container at padding width")
	}
	if _, _, err := DeriveDimensions(10, size); err == nil {
		t.Errorf("expected error for container below padding width")
	}
}

func TestLabelFormat(t *testing.T) {
	size, _ := SizeFor("small")
	if got := size.Label(); got != `66" x 24" (5.5 ft)` {
		t.Errorf("unexpected label %q", got)
	}
}

func TestFontsAndColorsNonEmpty(t *testing.T) {
	if len(Fonts()) != 9 {
		t.Errorf("expected 9 fonts, got %d", len(Fonts()))
	}
	if len(PresetColors()) != 10 {
		t.Errorf("expected 10 preset colors, got %d", len(PresetColors()))
	}
}
