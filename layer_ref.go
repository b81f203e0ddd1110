package layers

import "fmt"

// LayerRef is a lightweight, by-identifier handle to a Layer, resolvable
// through the owning stack. A ref never owns the layer it points at and may
// legitimately outlive it during teardown.
type LayerRef struct {
	identifier string
	stackID    string

	// owner is the stack whose structures contain this ref. Used to cheaply
	// resolve the cached stack id and to reject cross-stack refs.
	owner *Stack
}

func newLayerRef(owner *Stack) *LayerRef {
	return &LayerRef{owner: owner}
}

// IsSet reports whether the ref points at a layer identifier.
func (r *LayerRef) IsSet() bool {
	return r != nil && r.identifier != ""
}

// Identifier returns the identifier of the referenced layer.
func (r *LayerRef) Identifier() string {
	if r == nil {
		return ""
	}
	return r.identifier
}

// Set points the ref at layer, or clears it when layer is nil.
func (r *LayerRef) Set(layer *Layer) {
	if layer == nil {
		r.identifier = ""
		r.stackID = ""
		return
	}
	r.identifier = layer.identifier
	if layer.stack != nil {
		r.stackID = layer.stack.identifier
	}
}

// Initialize points the ref at layer, rejecting layers that belong to a
// different stack than the ref's container.
func (r *LayerRef) Initialize(layer *Layer) error {
	if layer != nil && r.owner != nil && layer.stack != r.owner {
		return fmt.Errorf("%w: ref and layer belong to different stacks", ErrInvalidArgument)
	}
	r.Set(layer)
	return nil
}

// Stack returns the stack the ref resolves through. The cached stack id is
// revalidated against the global registry when the owning stack has been
// reassigned.
func (r *LayerRef) Stack() *Stack {
	if r == nil || r.stackID == "" {
		return nil
	}
	if r.owner != nil && r.owner.identifier == r.stackID {
		return r.owner
	}
	return StackByID(r.stackID)
}

// Resolve returns the referenced layer. It fails for an unset ref, and
// returns nil without error when the layer no longer exists (dangling refs
// are expected during teardown).
func (r *LayerRef) Resolve() (*Layer, error) {
	if !r.IsSet() {
		return nil, fmt.Errorf("%w: cannot resolve empty layer ref", ErrInvalidState)
	}
	stack := r.Stack()
	if stack == nil {
		return nil, nil
	}
	return stack.LayerByID(r.identifier), nil
}

// Equal reports whether both refs are set and reference the same layer.
func (r *LayerRef) Equal(other *LayerRef) bool {
	if !r.IsSet() || !other.IsSet() {
		return false
	}
	return r.identifier == other.identifier
}

// EqualsLayer reports whether the ref references layer.
func (r *LayerRef) EqualsLayer(layer *Layer) bool {
	if !r.IsSet() || layer == nil {
		return false
	}
	return r.identifier == layer.identifier
}
