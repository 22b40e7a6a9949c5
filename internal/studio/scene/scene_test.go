package scene

import (
	"errors"
	"testing"
)

func rect(id string, left, top float64) *Rect {
	return &Rect{
		Base:  Base{ID: id, Left: left, Top: top, Opacity: 1},
		Width: 150, Height: 100, Fill: "#1e3a5f",
	}
}

func ids(s *Scene) []string {
	out := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		out[i] = e.Common().ID
	}
	return out
}

func assertOrder(t *testing.T, s *Scene, want ...string) {
	t.Helper()
	got := ids(s)
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestNewSceneIsEmptyAndWhite(t *testing.T) {
	s := New(852, 262)
	if s.Background != "#ffffff" {
		t.Errorf("expected white background, got %s", s.Background)
	}
	if len(s.Elements) != 0 {
		t.Errorf("expected empty scene")
	}
}

func TestAddAppendsOnTop(t *testing.T) {
	s := New(852, 262)
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 10, 10))
	assertOrder(t, s, "a", "b")
}

func TestRemoveIsSilentForMissing(t *testing.T) {
	s := New(852, 262)
	s.Add(rect("a", 0, 0))
	s.Remove("missing")
	assertOrder(t, s, "a")
	s.Remove("a")
	assertOrder(t, s)
}

func TestMoveForwardAndBackwardAreInverse(t *testing.T) {
	s := New(852, 262)
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 0, 0))
	s.Add(rect("c", 0, 0))

	if err := s.MoveForward("b"); err != nil {
		t.Fatalf("MoveForward: %v", err)
	}
	assertOrder(t, s, "a", "c", "b")

	if err := s.MoveBackward("b"); err != nil {
		t.Fatalf("MoveBackward: %v", err)
	}
	assertOrder(t, s, "a", "b", "c")
}

func TestMoveAtBoundaryIsNoOp(t *testing.T) {
	s := New(852, 262)
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 0, 0))

	if err := s.MoveForward("b"); err != nil {
		t.Fatalf("MoveForward at top: %v", err)
	}
	if err := s.MoveBackward("a"); err != nil {
		t.Fatalf("MoveBackward at bottom: %v", err)
	}
	assertOrder(t, s, "a", "b")
}

func TestMoveMissingElement(t *testing.T) {
	s := New(852, 262)
	if err := s.MoveForward("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.MoveBackward("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateOffsetsAndInsertsAbove(t *testing.T) {
	s := New(852, 262)
	s.Add(rect("a", 100, 50))
	s.Add(rect("b", 0, 0))

	copied, err := s.Duplicate("a", "a2")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	assertOrder(t, s, "a", "a2", "b")
	if copied.Common().Left != 120 || copied.Common().Top != 70 {
		t.Errorf("expected +20/+20 offset, got %v/%v", copied.Common().Left, copied.Common().Top)
	}

	// the copy is independent of the original
	copied.Common().Left = 500
	if s.Find("a").Common().Left != 100 {
		t.Errorf("mutating the copy must not touch the original")
	}
}

func TestDuplicateMissingElement(t *testing.T) {
	s := New(852, 262)
	if _, err := s.Duplicate("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClearResetsElementsAndBackground(t *testing.T) {
	s := New(852, 262)
	s.Background = "#1e3a5f"
	s.Add(rect("a", 0, 0))
	s.Clear()
	if len(s.Elements) != 0 || s.Background != "#ffffff" {
		t.Errorf("expected empty white scene after Clear")
	}
	if s.Width != 852 || s.Height != 262 {
		t.Errorf("Clear must not touch dimensions")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New(852, 262)
	s.Add(rect("a", 100, 50))

	c := s.Clone()
	c.Find("a").Common().Left = 999
	c.Background = "#000000"

	if s.Find("a").Common().Left != 100 {
		t.Errorf("clone shares element state with original")
	}
	if s.Background != "#ffffff" {
		t.Errorf("clone shares background with original")
	}
}
