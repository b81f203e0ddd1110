package layers

import (
	"context"
	"fmt"

	"github.com/goliatone/go-material-layers/nodetree"
	"github.com/goliatone/go-material-layers/pkg/activity"
)

// Stack owns an ordered set of top-level layers, the channel templates
// layers copy from, and the shared resources (image pool, logger, event
// emitter) every layer reaches through it.
//
// Layer slots are pooled: Delete returns a slot to the uninitialized state
// and a later NewLayer reuses it instead of growing the arena.
type Stack struct {
	identifier string
	name       string
	cfg        stackConfig

	layers   []*Layer
	topLevel []*LayerRef
	base     *LayerRef

	channels        []*Channel
	channelDefaults map[string]any

	rebuildPending bool
	emitter        *activity.Emitter
}

// NewStack constructs a stack and registers it for ref resolution.
func NewStack(name string, opts ...StackOption) *Stack {
	cfg := applyStackOptions(opts)
	s := &Stack{
		identifier:      UniqueIdentifier(nil, identifierLength),
		name:            name,
		cfg:             cfg,
		channelDefaults: map[string]any{},
	}
	if s.cfg.pool == nil {
		s.cfg.pool = NewMemoryImagePool(cfg.prefs)
	}
	s.base = newLayerRef(s)
	s.emitter = activity.NewEmitter(cfg.hooks, cfg.activityCfg)
	registerStack(s)
	return s
}

// Identifier returns the stack's unique identifier.
func (s *Stack) Identifier() string {
	return s.identifier
}

// Name returns the stack's display name.
func (s *Stack) Name() string {
	return s.name
}

// SetName renames the stack.
func (s *Stack) SetName(name string) {
	s.name = name
}

// Close deletes every layer and unregisters the stack. The stack must not
// be used afterwards.
func (s *Stack) Close() {
	for _, ref := range append([]*LayerRef(nil), s.topLevel...) {
		layer, _ := ref.Resolve()
		if layer != nil {
			layer.Delete()
		}
	}
	unregisterStack(s.identifier)
}

// DefineChannel registers a channel template layers can copy. Redefining a
// name updates the existing template's type.
func (s *Stack) DefineChannel(name string, typ nodetree.SocketType) *Channel {
	if existing := s.Channel(name); existing != nil {
		existing.Type = typ
		return existing
	}
	ch := NewChannel(name, typ)
	s.channels = append(s.channels, ch)
	return ch
}

// Channel returns the stack's channel template with the given name, or nil.
func (s *Stack) Channel(name string) *Channel {
	for _, ch := range s.channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// Channels returns the stack's channel templates in definition order.
func (s *Stack) Channels() []*Channel {
	out := make([]*Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// SetChannelEnabled toggles a stack channel template.
func (s *Stack) SetChannelEnabled(name string, enabled bool) error {
	ch := s.Channel(name)
	if ch == nil {
		return fmt.Errorf("%w: stack has no channel %q", ErrNotFound, name)
	}
	ch.Enabled = enabled
	s.RequestGraphRebuild()
	return nil
}

// SetChannelDefault stores the value new node tree outputs for the named
// channel are seeded with.
func (s *Stack) SetChannelDefault(name string, value any) error {
	if s.Channel(name) == nil {
		return fmt.Errorf("%w: stack has no channel %q", ErrNotFound, name)
	}
	s.channelDefaults[name] = value
	return nil
}

// ChannelDefaultValue returns the stored default for the named channel.
func (s *Stack) ChannelDefaultValue(name string) (any, bool) {
	value, ok := s.channelDefaults[name]
	return value, ok
}

// NewLayer initializes a new top-level layer, reusing a free slot when one
// exists. The first layer created becomes the stack's base layer.
func (s *Stack) NewLayer(name string, opts ...InitOption) (*Layer, error) {
	if len(opts) == 0 {
		opts = s.defaultInitOptions()
	}
	layer := s.acquireSlot()
	if err := layer.Initialize(name, opts...); err != nil {
		return nil, err
	}

	ref := newLayerRef(s)
	ref.Set(layer)
	s.topLevel = append(s.topLevel, ref)

	if !s.base.IsSet() {
		s.base.Set(layer)
	}
	s.RequestGraphRebuild()
	return layer, nil
}

// NewChildLayer initializes a new layer nested under parent.
func (s *Stack) NewChildLayer(parent *Layer, name string, opts ...InitOption) (*Layer, error) {
	if parent == nil || !parent.IsInitialized() {
		return nil, fmt.Errorf("%w: parent layer is not initialized", ErrInvalidArgument)
	}
	if parent.stack != s {
		return nil, fmt.Errorf("%w: parent layer belongs to another stack", ErrInvalidArgument)
	}
	if len(opts) == 0 {
		opts = s.defaultInitOptions()
	}

	layer := s.acquireSlot()
	if err := layer.Initialize(name, opts...); err != nil {
		return nil, err
	}

	if err := layer.parent.Initialize(parent); err != nil {
		return nil, err
	}
	childRef := newLayerRef(s)
	childRef.Set(layer)
	parent.children = append(parent.children, childRef)

	s.RequestGraphRebuild()
	return layer, nil
}

// RemoveLayer deletes layer and everything nested under it.
func (s *Stack) RemoveLayer(layer *Layer) error {
	if layer == nil || !layer.IsInitialized() {
		return fmt.Errorf("%w: layer is not initialized", ErrInvalidArgument)
	}
	if layer.stack != s {
		return fmt.Errorf("%w: layer belongs to another stack", ErrInvalidArgument)
	}
	layer.Delete()
	return nil
}

// LayerByID returns the initialized layer with the given identifier, or nil.
func (s *Stack) LayerByID(identifier string) *Layer {
	if identifier == "" {
		return nil
	}
	for _, layer := range s.layers {
		if layer.identifier == identifier {
			return layer
		}
	}
	return nil
}

// LayerByName returns the first initialized layer with the given name.
func (s *Stack) LayerByName(name string) *Layer {
	for _, layer := range s.layers {
		if layer.IsInitialized() && layer.name == name {
			return layer
		}
	}
	return nil
}

// Layers returns every initialized layer, in slot order.
func (s *Stack) Layers() []*Layer {
	var out []*Layer
	for _, layer := range s.layers {
		if layer.IsInitialized() {
			out = append(out, layer)
		}
	}
	return out
}

// TopLevelLayers returns the initialized top-level layers bottom first.
func (s *Stack) TopLevelLayers() []*Layer {
	var out []*Layer
	for _, ref := range s.topLevel {
		layer, _ := ref.Resolve()
		if layer != nil && layer.IsInitialized() {
			out = append(out, layer)
		}
	}
	return out
}

// BaseLayer returns the designated base layer, or nil.
func (s *Stack) BaseLayer() *Layer {
	layer, _ := s.base.Resolve()
	return layer
}

// SetBaseLayer designates layer as the stack's base.
func (s *Stack) SetBaseLayer(layer *Layer) error {
	if layer == nil {
		s.base.Set(nil)
		return nil
	}
	if !layer.IsInitialized() || layer.stack != s {
		return fmt.Errorf("%w: base layer must be an initialized layer of this stack", ErrInvalidArgument)
	}
	s.base.Set(layer)
	s.RequestGraphRebuild()
	return nil
}

// LayerAbove returns the top-level layer ordered directly above layer, or
// nil when layer is the topmost.
func (s *Stack) LayerAbove(layer *Layer) (*Layer, error) {
	ordered, idx, err := s.topLevelIndex(layer)
	if err != nil {
		return nil, err
	}
	if idx+1 >= len(ordered) {
		return nil, nil
	}
	return ordered[idx+1], nil
}

// LayerBelow returns the top-level layer ordered directly below layer, or
// nil when layer is the bottommost.
func (s *Stack) LayerBelow(layer *Layer) (*Layer, error) {
	ordered, idx, err := s.topLevelIndex(layer)
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return nil, nil
	}
	return ordered[idx-1], nil
}

func (s *Stack) topLevelIndex(layer *Layer) ([]*Layer, int, error) {
	if layer == nil || !layer.IsInitialized() {
		return nil, 0, fmt.Errorf("%w: layer is not initialized", ErrInvalidArgument)
	}
	ordered := s.TopLevelLayers()
	for i, candidate := range ordered {
		if candidate.Equal(layer) {
			return ordered, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: layer %q is not top level in this stack", ErrNotFound, layer.name)
}

// RequestGraphRebuild flags the stack's compositing graph as stale and
// runs the configured rebuild hook.
func (s *Stack) RequestGraphRebuild() {
	s.rebuildPending = true
	if s.cfg.onRebuild != nil {
		s.cfg.onRebuild()
	}
}

// ConsumeRebuildRequest reports whether a rebuild was requested since the
// last call, clearing the flag.
func (s *Stack) ConsumeRebuildRequest() bool {
	pending := s.rebuildPending
	s.rebuildPending = false
	return pending
}

// acquireSlot reuses a free layer slot or grows the arena.
func (s *Stack) acquireSlot() *Layer {
	for _, layer := range s.layers {
		if !layer.IsInitialized() {
			return layer
		}
	}
	layer := newSlot(s)
	s.layers = append(s.layers, layer)
	return layer
}

// allocateIdentifier returns an identifier unused by any live layer.
func (s *Stack) allocateIdentifier() string {
	existing := make(map[string]struct{}, len(s.layers))
	for _, layer := range s.layers {
		if layer.identifier != "" {
			existing[layer.identifier] = struct{}{}
		}
	}
	return UniqueIdentifier(existing, identifierLength)
}

// uniqueLayerName returns base unchanged when free, otherwise base suffixed
// with the first free two-digit number. exclude is skipped so a layer can
// keep its own name on rename.
func (s *Stack) uniqueLayerName(base string, exclude *Layer) string {
	taken := func(name string) bool {
		for _, layer := range s.layers {
			if layer == exclude || !layer.IsInitialized() {
				continue
			}
			if layer.name == name {
				return true
			}
		}
		return false
	}
	if !taken(base) {
		return base
	}
	return suffixedName(base, taken)
}

// defaultInitOptions seeds new layers with the stack's enabled channels.
func (s *Stack) defaultInitOptions() []InitOption {
	var enabled []*Channel
	for _, ch := range s.channels {
		if ch.Enabled {
			enabled = append(enabled, ch)
		}
	}
	if len(enabled) == 0 {
		return nil
	}
	return []InitOption{InitWithChannels(enabled...)}
}

// noteLayerDeleted drops bookkeeping for a layer that finished teardown.
func (s *Stack) noteLayerDeleted(identifier string) {
	for i, ref := range s.topLevel {
		if ref.Identifier() == identifier {
			s.topLevel = append(s.topLevel[:i], s.topLevel[i+1:]...)
			break
		}
	}
	if s.base.Identifier() == identifier {
		s.base.Set(nil)
	}
	s.RequestGraphRebuild()
}

func (s *Stack) prefs() Preferences {
	return s.cfg.prefs
}

func (s *Stack) logger() Logger {
	if s.cfg.logger == nil {
		return NoopLogger()
	}
	return s.cfg.logger
}

func (s *Stack) imagePool() ImagePool {
	return s.cfg.pool
}

func (s *Stack) treeOptions() []nodetree.TreeOption {
	return s.cfg.treeOpts
}

func (s *Stack) emit(event activity.Event) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(context.Background(), event); err != nil {
		s.logger().Warnf("activity hook failed for %s: %v", event.Verb, err)
	}
}
