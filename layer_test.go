package layers

import (
	"errors"
	"testing"

	"github.com/goliatone/go-material-layers/nodetree"
	"github.com/goliatone/go-material-layers/pkg/activity"
)

func newTestStack(t *testing.T, opts ...StackOption) *Stack {
	t.Helper()
	prefs := DefaultPreferences()
	prefs.ImageWidth = 16
	prefs.ImageHeight = 16
	stack := NewStack("Material", append([]StackOption{WithLogger(NoopLogger()), WithPreferences(prefs)}, opts...)...)
	stack.DefineChannel("Base Color", nodetree.SocketColor)
	stack.DefineChannel("Roughness", nodetree.SocketFloatFactor)
	stack.DefineChannel("Normal", nodetree.SocketVector)
	t.Cleanup(stack.Close)
	return stack
}

func TestLayerInitializeDefaults(t *testing.T) {
	stack := newTestStack(t)

	layer, err := stack.NewLayer("Base")
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	if !layer.IsInitialized() {
		t.Fatalf("expected layer to be initialized")
	}
	if got := len(layer.Identifier()); got != 8 {
		t.Fatalf("expected 8-char identifier, got %d (%q)", got, layer.Identifier())
	}
	if layer.Type() != LayerTypePaint {
		t.Fatalf("expected default paint type, got %v", layer.Type())
	}
	if !layer.Enabled() || layer.Opacity() != 1.0 {
		t.Fatalf("expected enabled layer at full opacity, got enabled=%v opacity=%v", layer.Enabled(), layer.Opacity())
	}
	if !layer.HasImage() {
		t.Fatalf("expected paint layer to get alpha storage")
	}
	if len(layer.Channels()) != 3 {
		t.Fatalf("expected the stack's 3 enabled channels, got %d", len(layer.Channels()))
	}
	for _, ch := range layer.Channels() {
		if layer.NodeTree().Output(ch.Name) == nil {
			t.Fatalf("expected node tree output for channel %q", ch.Name)
		}
	}
	if layer.NodeTree().Node(nodetree.GroupOutputName) == nil {
		t.Fatalf("expected group output node in the layer tree")
	}
}

func TestLayerInitializeTwiceFails(t *testing.T) {
	stack := newTestStack(t)
	layer, err := stack.NewLayer("Base")
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	if err := layer.Initialize("Again"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double initialize, got %v", err)
	}
}

func TestFillLayerSkipsImageAllocation(t *testing.T) {
	stack := newTestStack(t)
	layer, err := stack.NewLayer("Fill", InitWithType(LayerTypeFill))
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	if layer.HasImage() {
		t.Fatalf("fill layers must not allocate alpha storage")
	}
}

func TestInitializeRejectsBadType(t *testing.T) {
	stack := newTestStack(t)
	if _, err := stack.NewLayer("Bad", InitWithType(LayerType(42))); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDefaultChannelsSkipDisabled(t *testing.T) {
	stack := newTestStack(t)
	if err := stack.SetChannelEnabled("Normal", false); err != nil {
		t.Fatalf("SetChannelEnabled: %v", err)
	}
	layer, err := stack.NewLayer("Base")
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	if layer.Channel("Normal") != nil {
		t.Fatalf("disabled stack channel should not be copied by default")
	}

	all := stack.Channels()
	withDisabled, err := stack.NewLayer("All", InitWithChannels(all...), InitIncludeDisabledChannels())
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	if withDisabled.Channel("Normal") == nil {
		t.Fatalf("expected disabled channel to be copied when explicitly included")
	}
}

func TestLayerNameCollisions(t *testing.T) {
	stack := newTestStack(t)

	first, _ := stack.NewLayer("Layer")
	second, _ := stack.NewLayer("Layer")
	third, _ := stack.NewLayer("Layer")

	if first.Name() != "Layer" {
		t.Fatalf("expected first layer to keep its name, got %q", first.Name())
	}
	if second.Name() != "Layer.01" || third.Name() != "Layer.02" {
		t.Fatalf("expected .01/.02 suffixes, got %q and %q", second.Name(), third.Name())
	}

	second.Delete()
	fourth, _ := stack.NewLayer("Layer")
	if fourth.Name() != "Layer.01" {
		t.Fatalf("expected the freed suffix to be reused, got %q", fourth.Name())
	}

	// Once the unsuffixed name is gone the base name itself is free again.
	first.Delete()
	fifth, _ := stack.NewLayer("Layer")
	if fifth.Name() != "Layer" {
		t.Fatalf("expected the base name back, got %q", fifth.Name())
	}
}

func TestRenameKeepsOwnNameAndRenamesTree(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Paint")

	layer.Rename("Paint")
	if layer.Name() != "Paint" {
		t.Fatalf("renaming to own name must not suffix, got %q", layer.Name())
	}

	layer.Rename("Detail")
	if layer.Name() != "Detail" {
		t.Fatalf("rename failed, got %q", layer.Name())
	}
	if got := layer.NodeTree().Name(); got != ".Detail" {
		t.Fatalf("expected tree renamed to .Detail, got %q", got)
	}
}

func TestDeleteResetsSlotForReuse(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Base")
	slot := layer

	layer.Delete()

	if layer.IsInitialized() {
		t.Fatalf("deleted layer must be uninitialized")
	}
	if layer.Name() != "" || layer.Identifier() != "" {
		t.Fatalf("expected name and identifier cleared, got %q/%q", layer.Name(), layer.Identifier())
	}
	if layer.NodeTree() != nil || layer.HasImage() || len(layer.Channels()) != 0 {
		t.Fatalf("expected tree, image and channels released")
	}
	if layer.ImageChannel() != -1 || layer.Enabled() || layer.Opacity() != 0 {
		t.Fatalf("expected the slot back at its zero state")
	}
	if len(stack.Layers()) != 0 || len(stack.TopLevelLayers()) != 0 {
		t.Fatalf("deleted layer still visible through the stack")
	}

	reused, _ := stack.NewLayer("Next")
	if reused != slot {
		t.Fatalf("expected the freed slot to be reused")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Base")
	layer.Delete()
	layer.Delete()
	if layer.IsInitialized() {
		t.Fatalf("layer resurrected by second delete")
	}
}

func TestDeleteCascadesToChildren(t *testing.T) {
	stack := newTestStack(t)
	parent, _ := stack.NewLayer("Parent")
	child, _ := stack.NewChildLayer(parent, "Child")
	grandchild, _ := stack.NewChildLayer(child, "Grandchild")

	parent.Delete()

	for _, layer := range []*Layer{parent, child, grandchild} {
		if layer.IsInitialized() {
			t.Fatalf("expected %p to be deleted with its parent", layer)
		}
	}
	if len(stack.Layers()) != 0 {
		t.Fatalf("expected no live layers, got %d", len(stack.Layers()))
	}
}

func TestDeleteFreesSharedImageSlot(t *testing.T) {
	stack := newTestStack(t)
	a, _ := stack.NewLayer("A")
	b, _ := stack.NewLayer("B")

	if a.Image() != b.Image() {
		t.Fatalf("expected both paint layers to share one image")
	}
	if a.ImageChannel() != 0 || b.ImageChannel() != 1 {
		t.Fatalf("expected channels 0 and 1, got %d and %d", a.ImageChannel(), b.ImageChannel())
	}

	a.Delete()
	c, _ := stack.NewLayer("C")
	if c.Image() != b.Image() || c.ImageChannel() != 0 {
		t.Fatalf("expected freed channel 0 to be reused, got channel %d", c.ImageChannel())
	}
}

func TestConvertTo(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Fill", InitWithType(LayerTypeFill))

	if err := layer.ConvertTo(LayerType(99)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown type, got %v", err)
	}
	if err := layer.ConvertTo(LayerTypeFill); err != nil {
		t.Fatalf("same-type convert should be a no-op, got %v", err)
	}

	if err := layer.ConvertTo(LayerTypePaint); err != nil {
		t.Fatalf("ConvertTo paint: %v", err)
	}
	if !layer.HasImage() {
		t.Fatalf("converting to paint must bind alpha storage")
	}
	img := layer.Image()

	if err := layer.ConvertTo(LayerTypeFill); err != nil {
		t.Fatalf("ConvertTo fill: %v", err)
	}
	if layer.Image() != img {
		t.Fatalf("converting away from paint must keep the image bound")
	}
}

func TestOpacityClamped(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Base")
	layer.SetOpacity(1.5)
	if layer.Opacity() != 1.0 {
		t.Fatalf("expected opacity clamped to 1, got %v", layer.Opacity())
	}
	layer.SetOpacity(-0.5)
	if layer.Opacity() != 0.0 {
		t.Fatalf("expected opacity clamped to 0, got %v", layer.Opacity())
	}
}

func TestLayerLifecycleEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	stack := newTestStack(t, WithActivityHooks(capture))

	layer, err := stack.NewLayer("Base")
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	identifier := layer.Identifier()
	layer.Delete()

	var verbs []string
	for _, event := range capture.Events {
		if event.ObjectID == identifier && event.ObjectType == "layer" {
			verbs = append(verbs, event.Verb)
		}
	}
	if len(verbs) != 2 || verbs[0] != activity.VerbLayerInitialized || verbs[1] != activity.VerbLayerDeleted {
		t.Fatalf("unexpected lifecycle verbs: %v", verbs)
	}
	if capture.Events[0].Channel != "layers" {
		t.Fatalf("expected default activity channel, got %q", capture.Events[0].Channel)
	}
}

func TestFreeBakeClearsAllChannels(t *testing.T) {
	stack := newTestStack(t)
	layer, _ := stack.NewLayer("Base")

	if err := layer.Channel("Roughness").Bake([]float32{0.1, 0.2}); err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if !layer.AnyChannelBaked() || !layer.IsBaked() {
		t.Fatalf("expected a baked channel and a baked layer")
	}
	layer.FreeBake()
	if layer.AnyChannelBaked() || layer.IsBaked() {
		t.Fatalf("expected bakes freed")
	}
}
