// Package layers implements the material layer data model: a hierarchy of
// procedural layers composited into one shading result. Each layer owns a
// node tree producing one output per channel, an opacity, and optionally a
// painted alpha mask stored in a shared raster buffer.
package layers

import (
	"fmt"

	"github.com/goliatone/go-material-layers/nodetree"
	"github.com/goliatone/go-material-layers/pkg/activity"
)

// LayerType classifies a layer as paintable or fill-only.
type LayerType int

const (
	// LayerTypePaint is an image-backed layer whose alpha may be painted.
	LayerTypePaint LayerType = iota
	// LayerTypeFill derives its alpha from opacity and node mask only.
	LayerTypeFill
)

func (t LayerType) String() string {
	switch t {
	case LayerTypePaint:
		return "paint"
	case LayerTypeFill:
		return "fill"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a recognized layer type.
func (t LayerType) Valid() bool {
	return t == LayerTypePaint || t == LayerTypeFill
}

// InitOption configures Layer.Initialize.
type InitOption func(*initConfig)

type initConfig struct {
	layerType   LayerType
	channels    []*Channel
	enabledOnly bool
}

func applyInitOptions(opts []InitOption) initConfig {
	cfg := initConfig{
		layerType:   LayerTypePaint,
		enabledOnly: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// InitWithType sets the layer type created by Initialize.
func InitWithType(layerType LayerType) InitOption {
	return func(cfg *initConfig) {
		cfg.layerType = layerType
	}
}

// InitWithChannels seeds the layer with copies of the given channels.
func InitWithChannels(channels ...*Channel) InitOption {
	return func(cfg *initConfig) {
		cfg.channels = append(cfg.channels, channels...)
	}
}

// InitIncludeDisabledChannels seeds disabled channels too, instead of only
// the enabled ones.
func InitIncludeDisabledChannels() InitOption {
	return func(cfg *initConfig) {
		cfg.enabledOnly = false
	}
}

// Layer is one entry of a stack. The same type backs paint and fill layers.
//
// A slot exists pre-allocated inside its stack in an uninitialized state.
// Initialize transitions it to live; Delete tears every owned resource down
// and returns the slot to the pool for reuse.
type Layer struct {
	name       string
	identifier string
	layerType  LayerType
	enabled    bool
	opacity    float64
	baked      bool

	channels           []*Channel
	activeChannelIndex int

	tree     *nodetree.Tree
	nodeMask *nodetree.Tree

	image        *Image
	imageChannel int

	parent   *LayerRef
	children []*LayerRef

	preview *previewMaterial

	stack *Stack
}

// newSlot builds an uninitialized layer slot attached to stack.
func newSlot(stack *Stack) *Layer {
	return &Layer{
		imageChannel: -1,
		parent:       newLayerRef(stack),
		stack:        stack,
	}
}

// IsInitialized reports whether the slot holds a live layer.
func (l *Layer) IsInitialized() bool {
	return l != nil && l.identifier != ""
}

// Identifier returns the layer's unique identifier, or "" when uninitialized.
func (l *Layer) Identifier() string {
	if l == nil {
		return ""
	}
	return l.identifier
}

// Name returns the layer's display name.
func (l *Layer) Name() string {
	return l.name
}

// Type returns the layer's type.
func (l *Layer) Type() LayerType {
	return l.layerType
}

// Enabled reports whether the layer contributes to compositing.
func (l *Layer) Enabled() bool {
	return l.enabled
}

// SetEnabled toggles the layer's visibility.
func (l *Layer) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 {
	return l.opacity
}

// SetOpacity stores opacity clamped to [0, 1].
func (l *Layer) SetOpacity(opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	l.opacity = opacity
}

// Stack returns the stack owning this layer's slot.
func (l *Layer) Stack() *Stack {
	return l.stack
}

// Parent returns the ref to this layer's parent; unset for top-level layers.
func (l *Layer) Parent() *LayerRef {
	return l.parent
}

// Children returns refs to this layer's children in order.
func (l *Layer) Children() []*LayerRef {
	out := make([]*LayerRef, len(l.children))
	copy(out, l.children)
	return out
}

// NodeTree returns the layer's computation graph.
func (l *Layer) NodeTree() *nodetree.Tree {
	return l.tree
}

// NodeMask returns the optional mask tree.
func (l *Layer) NodeMask() *nodetree.Tree {
	return l.nodeMask
}

// SetNodeMask assigns the mask tree and requests a stack graph rebuild.
func (l *Layer) SetNodeMask(mask *nodetree.Tree) {
	l.nodeMask = mask
	if l.IsInitialized() && l.stack != nil {
		l.stack.RequestGraphRebuild()
	}
}

// Image returns the raster buffer holding this layer's painted alpha.
func (l *Layer) Image() *Image {
	return l.image
}

// ImageChannel returns which channel of Image holds this layer's alpha:
// -1 for a dedicated buffer, 0..2 for a shared one.
func (l *Layer) ImageChannel() int {
	return l.imageChannel
}

// HasImage reports whether alpha storage is bound.
func (l *Layer) HasImage() bool {
	return l.image != nil
}

// UsesSharedImage reports whether the layer occupies one channel of a
// buffer shared with other layers.
func (l *Layer) UsesSharedImage() bool {
	return l.image != nil && l.imageChannel >= 0
}

// setImage binds alpha storage; only the image pool calls this.
func (l *Layer) setImage(image *Image, channel int) {
	l.image = image
	l.imageChannel = channel
}

// IsBaseLayer reports whether this layer is the stack's designated base.
func (l *Layer) IsBaseLayer() bool {
	if l.stack == nil {
		return false
	}
	return l.stack.base.EqualsLayer(l)
}

// IsTopLevel reports whether the layer is initialized with no parent.
func (l *Layer) IsTopLevel() bool {
	return l.IsInitialized() && !l.parent.IsSet()
}

// IsBaked reports whether any of this layer's output was baked and not
// yet freed.
func (l *Layer) IsBaked() bool {
	return l.baked
}

// AnyChannelBaked reports whether any of this layer's channels is baked.
func (l *Layer) AnyChannelBaked() bool {
	for _, ch := range l.channels {
		if ch.IsBaked() {
			return true
		}
	}
	return false
}

// Equal reports whether other is the same live layer.
func (l *Layer) Equal(other *Layer) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.identifier != "" && l.identifier == other.identifier
}

// Initialize transitions an uninitialized slot to a live layer. It must be
// called before the layer can be used.
func (l *Layer) Initialize(name string, opts ...InitOption) error {
	if l.stack == nil {
		return fmt.Errorf("%w: layer slot is not attached to a stack", ErrInvalidState)
	}
	if l.IsInitialized() {
		return fmt.Errorf("%w: layer %q is already initialized", ErrInvalidState, l.name)
	}

	cfg := applyInitOptions(opts)
	if !cfg.layerType.Valid() {
		return fmt.Errorf("%w: unrecognized layer type %d", ErrInvalidArgument, cfg.layerType)
	}

	l.identifier = l.stack.allocateIdentifier()
	l.setName(name)
	l.layerType = cfg.layerType
	l.enabled = true
	l.opacity = 1.0
	l.activeChannelIndex = 0

	l.tree = nodetree.New(l.treeName(), l.stack.treeOptions()...)

	for _, ch := range cfg.channels {
		if ch == nil {
			continue
		}
		if ch.Enabled || !cfg.enabledOnly {
			if _, err := l.AddChannel(ch); err != nil {
				return err
			}
		}
	}

	l.tree.AddGroupOutput()
	l.tree.SetVectorDefaults()

	if l.layerType == LayerTypePaint {
		if err := l.stack.imagePool().AllocateImageToLayer(l); err != nil {
			return err
		}
	}

	if l.stack.prefs().ShowPreviews {
		l.createPreviewMaterial()
	}

	l.emit(activity.BuildLayerEvent(activity.VerbLayerInitialized, l.eventInput()))
	return nil
}

// Delete tears the layer and all of its children down, returning the slot
// to the uninitialized state so it can be reused by a future Initialize.
// No-op when already uninitialized.
func (l *Layer) Delete() {
	if !l.IsInitialized() {
		return
	}

	// Children deallocate resources through the stack during their own
	// teardown, so capture it before the slot starts clearing state.
	stack := l.stack
	identifier := l.identifier
	input := l.eventInput()

	// Clearing the identifier first makes the layer invisible to lookups
	// mid-teardown.
	l.identifier = ""
	l.detachFromParent(identifier)
	l.FreeBake()

	if l.HasImage() {
		stack.imagePool().DeallocateLayerImage(l)
	}

	for _, ref := range l.children {
		child, _ := ref.Resolve()
		if child != nil {
			child.Delete()
		}
	}
	l.children = nil

	for _, ch := range l.channels {
		ch.delete()
	}
	l.channels = nil
	l.activeChannelIndex = 0

	l.tree = nil
	l.nodeMask = nil
	l.deletePreviewMaterial()
	l.name = ""
	l.layerType = LayerTypePaint
	l.enabled = false
	l.opacity = 0

	stack.noteLayerDeleted(identifier)
	stack.emit(activity.BuildLayerEvent(activity.VerbLayerDeleted, input))
}

// ConvertTo changes the layer's type. Converting to paint binds alpha
// storage when none exists; converting away never releases it, only Delete
// does.
func (l *Layer) ConvertTo(layerType LayerType) error {
	if !layerType.Valid() {
		return fmt.Errorf("%w: unrecognized layer type %d", ErrInvalidArgument, layerType)
	}
	if layerType == l.layerType {
		return nil
	}

	if layerType == LayerTypePaint && l.image == nil {
		if err := l.stack.imagePool().AllocateImageToLayer(l); err != nil {
			return err
		}
	}

	l.layerType = layerType
	l.emit(activity.BuildLayerEvent(activity.VerbLayerConverted, l.eventInput()))
	return nil
}

// Rename changes the display name, suffixing it when taken by another
// initialized layer, and renames the node tree to match.
func (l *Layer) Rename(name string) {
	l.setName(name)
	if l.tree != nil {
		l.tree.SetName(l.treeName())
	}
}

// FreeBake frees any baked channel of this layer. The stack's graph should
// be rebuilt afterwards.
func (l *Layer) FreeBake() {
	for _, ch := range l.channels {
		if ch.IsBaked() {
			ch.FreeBake()
		}
	}
	l.baked = false
}

// setName stores name, auto-suffixed so it is unique among the stack's
// initialized layers.
func (l *Layer) setName(name string) {
	if l.stack != nil {
		name = l.stack.uniqueLayerName(name, l)
	}
	l.name = name
}

// treeName is what the layer's node tree should be named.
func (l *Layer) treeName() string {
	return "." + l.name
}

// detachFromParent removes this layer from its parent's children and
// clears the parent ref. Tolerates a parent that is already mid-teardown.
func (l *Layer) detachFromParent(identifier string) {
	if !l.parent.IsSet() {
		return
	}
	parent, _ := l.parent.Resolve()
	if parent != nil {
		parent.removeChildRef(identifier)
	}
	l.parent.Set(nil)
}

func (l *Layer) removeChildRef(identifier string) {
	for i, ref := range l.children {
		if ref.Identifier() == identifier {
			l.children = append(l.children[:i], l.children[i+1:]...)
			return
		}
	}
}

func (l *Layer) eventInput() activity.LayerEventInput {
	input := activity.LayerEventInput{
		LayerID:   l.identifier,
		LayerName: l.name,
	}
	if l.stack != nil {
		input.StackID = l.stack.identifier
	}
	return input
}

func (l *Layer) emit(event activity.Event) {
	if l.stack != nil {
		l.stack.emit(event)
	}
}

func (l *Layer) logger() Logger {
	if l.stack != nil {
		return l.stack.logger()
	}
	return NoopLogger()
}

func (l *Layer) maxHierarchyDepth() int {
	if l.stack != nil {
		if depth := l.stack.prefs().MaxHierarchyDepth; depth > 0 {
			return depth
		}
	}
	return DefaultPreferences().MaxHierarchyDepth
}
