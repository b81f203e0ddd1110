package layers

import (
	"fmt"

	"github.com/goliatone/go-material-layers/internal/hydrate"
	"github.com/goliatone/go-material-layers/nodetree"
)

// ChannelDefinition is the YAML form of a stack channel template.
type ChannelDefinition struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Enabled *bool  `yaml:"enabled"`
	Default any    `yaml:"default"`
}

type channelDefinitionFile struct {
	Channels []ChannelDefinition `yaml:"channels"`
}

// SocketType maps the definition's type string onto a socket type.
func (d ChannelDefinition) SocketType() (nodetree.SocketType, error) {
	switch d.Type {
	case "float":
		return nodetree.SocketFloat, nil
	case "float_factor", "factor":
		return nodetree.SocketFloatFactor, nil
	case "color":
		return nodetree.SocketColor, nil
	case "vector":
		return nodetree.SocketVector, nil
	case "shader":
		return nodetree.SocketShader, nil
	default:
		return 0, fmt.Errorf("%w: unknown channel type %q", ErrInvalidArgument, d.Type)
	}
}

// LoadChannelDefinitions decodes a YAML channel list.
func LoadChannelDefinitions(payload []byte) ([]ChannelDefinition, error) {
	decoder := hydrate.NewDecoder(
		hydrate.WithPostHook[channelDefinitionFile](func(_ hydrate.Context, file *channelDefinitionFile) error {
			seen := map[string]struct{}{}
			for _, def := range file.Channels {
				if def.Name == "" {
					return fmt.Errorf("%w: channel definition without a name", ErrInvalidArgument)
				}
				if _, dup := seen[def.Name]; dup {
					return fmt.Errorf("%w: duplicate channel definition %q", ErrInvalidArgument, def.Name)
				}
				seen[def.Name] = struct{}{}
				if _, err := def.SocketType(); err != nil {
					return err
				}
			}
			return nil
		}),
	)
	file, err := decoder.Decode(hydrate.Context{Name: "channels"}, payload)
	if err != nil {
		return nil, err
	}
	return file.Channels, nil
}

// ApplyChannelDefinitions registers every definition as a stack channel
// template, along with enabled state and default value.
func (s *Stack) ApplyChannelDefinitions(defs []ChannelDefinition) error {
	for _, def := range defs {
		typ, err := def.SocketType()
		if err != nil {
			return err
		}
		ch := s.DefineChannel(def.Name, typ)
		if def.Enabled != nil {
			ch.Enabled = *def.Enabled
		}
		if def.Default != nil {
			if err := s.SetChannelDefault(def.Name, def.Default); err != nil {
				return err
			}
		}
	}
	return nil
}
