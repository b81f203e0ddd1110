package layers

import (
	"fmt"

	"github.com/goliatone/go-material-layers/nodetree"
	"github.com/goliatone/go-material-layers/pkg/activity"
)

// Channel returns this layer's channel with the given name, or nil.
func (l *Layer) Channel(name string) *Channel {
	for _, ch := range l.channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// Channels returns the layer's channels in order.
func (l *Layer) Channels() []*Channel {
	out := make([]*Channel, len(l.channels))
	copy(out, l.channels)
	return out
}

// ActiveChannel returns the channel currently selected for editing, or nil
// when the layer has none.
func (l *Layer) ActiveChannel() *Channel {
	if len(l.channels) == 0 {
		return nil
	}
	idx := l.activeChannelIndex
	if idx < 0 || idx >= len(l.channels) {
		idx = 0
	}
	return l.channels[idx]
}

// ActiveChannelIndex returns the index of the active channel.
func (l *Layer) ActiveChannelIndex() int {
	return l.activeChannelIndex
}

// SetActiveChannel selects the named channel for editing.
func (l *Layer) SetActiveChannel(name string) error {
	for i, ch := range l.channels {
		if ch.Name == name {
			l.activeChannelIndex = i
			return nil
		}
	}
	return fmt.Errorf("%w: layer %q has no channel %q", ErrNotFound, l.name, name)
}

// AddChannel adds a copy of the given channel template to the layer and
// syncs the node tree with a matching output socket. Adding a channel the
// layer already has is a no-op returning the existing channel.
func (l *Layer) AddChannel(template *Channel) (*Channel, error) {
	if template == nil {
		return nil, fmt.Errorf("%w: nil channel template", ErrInvalidArgument)
	}
	if existing := l.Channel(template.Name); existing != nil {
		l.logger().Warnf("layer %q already has channel %q", l.name, template.Name)
		return existing, nil
	}

	ch := &Channel{}
	ch.initFrom(template, l)
	l.channels = append(l.channels, ch)

	if l.tree != nil {
		l.ensureNodeTreeOutput(ch)
	}
	l.refreshPreviewMaterial()

	l.emit(activity.BuildChannelEvent(activity.VerbChannelAdded, l.eventInput(), ch.Name))
	return ch, nil
}

// RemoveChannel removes the named channel, its node tree output, and any
// baked data it holds.
func (l *Layer) RemoveChannel(name string) error {
	idx := -1
	for i, ch := range l.channels {
		if ch.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: layer %q has no channel %q", ErrNotFound, l.name, name)
	}

	l.channels[idx].delete()
	l.channels = append(l.channels[:idx], l.channels[idx+1:]...)

	if l.tree != nil {
		l.tree.RemoveOutput(name)
	}

	if idx < l.activeChannelIndex {
		l.activeChannelIndex--
	}
	if l.activeChannelIndex >= len(l.channels) {
		l.activeChannelIndex = len(l.channels) - 1
	}
	if l.activeChannelIndex < 0 {
		l.activeChannelIndex = 0
	}

	l.refreshPreviewMaterial()
	l.emit(activity.BuildChannelEvent(activity.VerbChannelRemoved, l.eventInput(), name))
	return nil
}

// ClearChannels removes every channel from the layer.
func (l *Layer) ClearChannels() {
	for len(l.channels) > 0 {
		// RemoveChannel cannot miss here.
		_ = l.RemoveChannel(l.channels[len(l.channels)-1].Name)
	}
}

// ensureNodeTreeOutput syncs the tree with an output socket matching ch,
// seeding its default from the stack and wiring directional defaults.
func (l *Layer) ensureNodeTreeOutput(ch *Channel) {
	socket := l.tree.EnsureOutput(ch.Name, ch.Type)
	if l.stack != nil {
		if def, ok := l.stack.ChannelDefaultValue(ch.Name); ok {
			socket.Default = def
		}
	}
	l.tree.EnsureDefaultLink(socket)
}

// ReplaceNodeTree swaps the layer's node tree for tree. When updateChannels
// is set, the layer's channels are reconciled against the new tree's
// outputs: stack-known channels the tree exposes are added, channels the
// tree lacks are removed. The base layer additionally keeps a channel for
// every enabled stack channel regardless of the tree's outputs.
func (l *Layer) ReplaceNodeTree(tree *nodetree.Tree, updateChannels bool) error {
	if tree == nil {
		return fmt.Errorf("%w: nil node tree", ErrInvalidArgument)
	}
	if !l.IsInitialized() {
		return fmt.Errorf("%w: cannot replace the tree of an uninitialized layer", ErrInvalidState)
	}

	if tree != l.tree {
		l.tree = tree
	}
	tree.SetName(l.treeName())
	tree.AddGroupOutput()

	if updateChannels {
		target := map[string]struct{}{}
		ordered := tree.OutputNames()
		for _, name := range ordered {
			target[name] = struct{}{}
		}
		if l.IsBaseLayer() {
			for _, ch := range l.stack.Channels() {
				if !ch.Enabled {
					continue
				}
				if _, ok := target[ch.Name]; !ok {
					target[ch.Name] = struct{}{}
					ordered = append(ordered, ch.Name)
				}
			}
		}

		for _, name := range ordered {
			if l.Channel(name) != nil {
				continue
			}
			if template := l.stack.Channel(name); template != nil {
				if _, err := l.AddChannel(template); err != nil {
					return err
				}
			}
		}

		for i := len(l.channels) - 1; i >= 0; i-- {
			if _, ok := target[l.channels[i].Name]; !ok {
				if err := l.RemoveChannel(l.channels[i].Name); err != nil {
					return err
				}
			}
		}
	}

	for _, ch := range l.channels {
		if l.stack != nil {
			if stackCh := l.stack.Channel(ch.Name); stackCh != nil {
				ch.Enabled = stackCh.Enabled
			}
		}
		l.ensureNodeTreeOutput(ch)
	}

	tree.SetVectorDefaults()
	l.refreshPreviewMaterial()
	l.emit(activity.BuildLayerEvent(activity.VerbTreeReplaced, l.eventInput()))
	return nil
}
