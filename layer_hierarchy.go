package layers

import "fmt"

// Descendents returns every layer nested under this one, youngest first:
// for children [A, B] with grandchildren [A1] and [B1, B2] the order is
// [A1, A, B1, B2, B]. Unresolvable child refs are skipped.
func (l *Layer) Descendents() []*Layer {
	var out []*Layer
	for _, ref := range l.children {
		child, _ := ref.Resolve()
		if child == nil {
			continue
		}
		out = append(out, child.Descendents()...)
		out = append(out, child)
	}
	return out
}

// LayerAbove returns the next initialized sibling toward the top of the
// stack, or nil when this layer is already the topmost sibling.
func (l *Layer) LayerAbove() (*Layer, error) {
	siblings, idx, err := l.siblings()
	if err != nil {
		return nil, err
	}
	if idx+1 >= len(siblings) {
		return nil, nil
	}
	return siblings[idx+1], nil
}

// LayerBelow returns the next initialized sibling toward the bottom of the
// stack, or nil when this layer is already the bottommost sibling.
func (l *Layer) LayerBelow() (*Layer, error) {
	siblings, idx, err := l.siblings()
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return nil, nil
	}
	return siblings[idx-1], nil
}

// siblings returns the ordered initialized layers sharing this layer's
// parent, and this layer's index among them.
func (l *Layer) siblings() ([]*Layer, int, error) {
	if !l.IsInitialized() {
		return nil, 0, fmt.Errorf("%w: uninitialized layer has no position", ErrInvalidState)
	}
	var ordered []*Layer
	if l.IsTopLevel() {
		ordered = l.stack.TopLevelLayers()
	} else {
		parent, err := l.parent.Resolve()
		if err != nil {
			return nil, 0, err
		}
		if parent == nil {
			return nil, 0, fmt.Errorf("%w: parent of layer %q no longer exists", ErrInvalidState, l.name)
		}
		for _, ref := range parent.children {
			sibling, _ := ref.Resolve()
			if sibling != nil && sibling.IsInitialized() {
				ordered = append(ordered, sibling)
			}
		}
	}
	for i, sibling := range ordered {
		if sibling.Equal(l) {
			return ordered, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: layer %q missing from its sibling ordering", ErrInvalidState, l.name)
}

// TopLevelLayer walks the parent chain up to the layer with no parent.
func (l *Layer) TopLevelLayer() (*Layer, error) {
	current := l
	for hops := 0; hops < l.maxHierarchyDepth(); hops++ {
		if !current.parent.IsSet() {
			return current, nil
		}
		parent, err := current.parent.Resolve()
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return current, nil
		}
		current = parent
	}
	return nil, newCycleError("top level layer", l.name, l.maxHierarchyDepth())
}

// IsDescendentOf reports whether other appears anywhere in this layer's
// parent chain.
func (l *Layer) IsDescendentOf(other *Layer) (bool, error) {
	if other == nil || !other.IsInitialized() {
		return false, nil
	}
	current := l
	for hops := 0; hops < l.maxHierarchyDepth(); hops++ {
		if !current.parent.IsSet() {
			return false, nil
		}
		if current.parent.EqualsLayer(other) {
			return true, nil
		}
		parent, err := current.parent.Resolve()
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		current = parent
	}
	return false, newCycleError("descendent check", l.name, l.maxHierarchyDepth())
}

// StackDepth returns how many parents sit above this layer: 0 for
// top-level layers, 1 for their children, and so on.
func (l *Layer) StackDepth() (int, error) {
	depth := 0
	current := l
	for hops := 0; hops < l.maxHierarchyDepth(); hops++ {
		if !current.parent.IsSet() {
			return depth, nil
		}
		parent, err := current.parent.Resolve()
		if err != nil {
			return 0, err
		}
		if parent == nil {
			return depth, nil
		}
		depth++
		current = parent
	}
	return 0, newCycleError("stack depth", l.name, l.maxHierarchyDepth())
}
