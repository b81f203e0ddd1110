package layers

import (
	"errors"
	"testing"
)

func TestDescendentsYoungestFirst(t *testing.T) {
	stack := newTestStack(t)
	root, _ := stack.NewLayer("Root")
	a, _ := stack.NewChildLayer(root, "A")
	a1, _ := stack.NewChildLayer(a, "A1")
	b, _ := stack.NewChildLayer(root, "B")
	b1, _ := stack.NewChildLayer(b, "B1")
	b2, _ := stack.NewChildLayer(b, "B2")

	got := root.Descendents()
	want := []*Layer{a1, a, b1, b2, b}
	if len(got) != len(want) {
		t.Fatalf("expected %d descendents, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("descendent %d: got %q, want %q", i, got[i].Name(), want[i].Name())
		}
	}
}

func TestTopLevelAboveBelow(t *testing.T) {
	stack := newTestStack(t)
	bottom, _ := stack.NewLayer("Bottom")
	middle, _ := stack.NewLayer("Middle")
	top, _ := stack.NewLayer("Top")

	if below, err := bottom.LayerBelow(); err != nil || below != nil {
		t.Fatalf("expected nothing below the bottom layer, got %v (%v)", below, err)
	}
	if above, err := top.LayerAbove(); err != nil || above != nil {
		t.Fatalf("expected nothing above the top layer, got %v (%v)", above, err)
	}
	if above, err := bottom.LayerAbove(); err != nil || above != middle {
		t.Fatalf("expected Middle above Bottom, got %v (%v)", above, err)
	}
	if below, err := top.LayerBelow(); err != nil || below != middle {
		t.Fatalf("expected Middle below Top, got %v (%v)", below, err)
	}
}

func TestSiblingAboveBelowNested(t *testing.T) {
	stack := newTestStack(t)
	parent, _ := stack.NewLayer("Parent")
	first, _ := stack.NewChildLayer(parent, "First")
	second, _ := stack.NewChildLayer(parent, "Second")

	if above, err := first.LayerAbove(); err != nil || above != second {
		t.Fatalf("expected Second above First, got %v (%v)", above, err)
	}
	if below, err := second.LayerBelow(); err != nil || below != first {
		t.Fatalf("expected First below Second, got %v (%v)", below, err)
	}
	if below, err := first.LayerBelow(); err != nil || below != nil {
		t.Fatalf("expected nothing below the first child, got %v (%v)", below, err)
	}
}

func TestAboveBelowRequireInitialized(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Base")
	layer.Delete()
	if _, err := layer.LayerAbove(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := layer.LayerBelow(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestStackDepth(t *testing.T) {
	stack := newTestStack(t)
	root, _ := stack.NewLayer("Root")
	child, _ := stack.NewChildLayer(root, "Child")
	grandchild, _ := stack.NewChildLayer(child, "Grandchild")

	for i, tc := range []struct {
		layer *Layer
		want  int
	}{
		{root, 0},
		{child, 1},
		{grandchild, 2},
	} {
		got, err := tc.layer.StackDepth()
		if err != nil {
			t.Fatalf("case %d: StackDepth: %v", i, err)
		}
		if got != tc.want {
			t.Fatalf("case %d: got depth %d, want %d", i, got, tc.want)
		}
	}
}

func TestTopLevelLayerWalk(t *testing.T) {
	stack := newTestStack(t)
	root, _ := stack.NewLayer("Root")
	child, _ := stack.NewChildLayer(root, "Child")
	grandchild, _ := stack.NewChildLayer(child, "Grandchild")

	got, err := grandchild.TopLevelLayer()
	if err != nil {
		t.Fatalf("TopLevelLayer: %v", err)
	}
	if got != root {
		t.Fatalf("expected Root, got %q", got.Name())
	}

	self, err := root.TopLevelLayer()
	if err != nil || self != root {
		t.Fatalf("expected a top-level layer to return itself, got %v (%v)", self, err)
	}
}

func TestIsDescendentOf(t *testing.T) {
	stack := newTestStack(t)
	root, _ := stack.NewLayer("Root")
	other, _ := stack.NewLayer("Other")
	child, _ := stack.NewChildLayer(root, "Child")
	grandchild, _ := stack.NewChildLayer(child, "Grandchild")

	if got, err := grandchild.IsDescendentOf(root); err != nil || !got {
		t.Fatalf("expected grandchild to descend from root, got %v (%v)", got, err)
	}
	if got, err := grandchild.IsDescendentOf(other); err != nil || got {
		t.Fatalf("expected no relation to an unrelated layer, got %v (%v)", got, err)
	}
	if got, err := root.IsDescendentOf(grandchild); err != nil || got {
		t.Fatalf("descendence must not be symmetric, got %v (%v)", got, err)
	}
	if got, err := root.IsDescendentOf(nil); err != nil || got {
		t.Fatalf("nil layer has no descendents, got %v (%v)", got, err)
	}
}

func TestHierarchyWalksDetectCycles(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.MaxHierarchyDepth = 10
	prefs.ImageWidth = 16
	prefs.ImageHeight = 16
	stack := newTestStack(t, WithPreferences(prefs))
	a, _ := stack.NewLayer("A")
	b, _ := stack.NewChildLayer(a, "B")

	// Corrupt the hierarchy into a two-node cycle.
	a.parent.Set(b)

	if _, err := a.StackDepth(); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected from StackDepth, got %v", err)
	}
	if _, err := b.TopLevelLayer(); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected from TopLevelLayer, got %v", err)
	}
	other, _ := stack.NewLayer("Other")
	if _, err := a.IsDescendentOf(other); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected from IsDescendentOf, got %v", err)
	}

	var cycleErr *CycleError
	_, err := a.StackDepth()
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected a CycleError, got %T", err)
	}
	if cycleErr.Hops != 10 {
		t.Fatalf("expected the configured bound in the error, got %d", cycleErr.Hops)
	}
}
