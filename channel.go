package layers

import (
	"fmt"

	"github.com/goliatone/go-material-layers/nodetree"
)

// Channel is a named, typed output slot of a layer. Stack-level channels act
// as templates; layer channels are copies initialized from them.
type Channel struct {
	Name    string
	Type    nodetree.SocketType
	Enabled bool

	baked *BakedData
	layer *Layer
}

// NewChannel constructs an enabled channel template.
func NewChannel(name string, typ nodetree.SocketType) *Channel {
	return &Channel{
		Name:    name,
		Type:    typ,
		Enabled: true,
	}
}

// initFrom copies the template's identity onto c and binds it to layer.
func (c *Channel) initFrom(template *Channel, layer *Layer) {
	c.Name = template.Name
	c.Type = template.Type
	c.Enabled = template.Enabled
	c.layer = layer
}

// Layer returns the layer this channel belongs to, or nil for templates.
func (c *Channel) Layer() *Layer {
	return c.layer
}

// IsBaked reports whether the channel holds baked data.
func (c *Channel) IsBaked() bool {
	return c != nil && c.baked != nil
}

// Bake stores samples as the channel's baked value.
func (c *Channel) Bake(samples []float32) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: empty bake payload for channel %q", ErrInvalidArgument, c.Name)
	}
	baked, err := encodeBake(samples)
	if err != nil {
		return err
	}
	c.baked = baked
	if c.layer != nil {
		c.layer.baked = true
	}
	return nil
}

// Baked returns the channel's baked payload, or nil.
func (c *Channel) Baked() *BakedData {
	if c == nil {
		return nil
	}
	return c.baked
}

// FreeBake discards any baked data. Safe to call when nothing is baked.
func (c *Channel) FreeBake() {
	c.baked = nil
}

// delete tears the channel down before removal from its layer.
func (c *Channel) delete() {
	c.FreeBake()
	c.layer = nil
}
