package layers

import (
	"errors"
	"testing"

	"github.com/goliatone/go-material-layers/nodetree"
)

const channelDefsPayload = `channels:
  - name: Base Color
    type: color
  - name: Roughness
    type: float_factor
    default: 0.5
  - name: Normal
    type: vector
    enabled: false
`

func TestLoadChannelDefinitions(t *testing.T) {
	defs, err := LoadChannelDefinitions([]byte(channelDefsPayload))
	if err != nil {
		t.Fatalf("LoadChannelDefinitions: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	if typ, err := defs[1].SocketType(); err != nil || typ != nodetree.SocketFloatFactor {
		t.Fatalf("expected a factor type, got %v (%v)", typ, err)
	}
	if defs[2].Enabled == nil || *defs[2].Enabled {
		t.Fatalf("expected Normal disabled, got %+v", defs[2].Enabled)
	}
}

func TestLoadChannelDefinitionsValidates(t *testing.T) {
	for name, payload := range map[string]string{
		"missing name": "channels:\n  - type: color\n",
		"unknown type": "channels:\n  - name: X\n    type: quaternion\n",
		"duplicate":    "channels:\n  - name: X\n    type: color\n  - name: X\n    type: color\n",
	} {
		if _, err := LoadChannelDefinitions([]byte(payload)); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestApplyChannelDefinitions(t *testing.T) {
	stack := NewStack("Material", WithLogger(NoopLogger()))
	t.Cleanup(stack.Close)

	defs, err := LoadChannelDefinitions([]byte(channelDefsPayload))
	if err != nil {
		t.Fatalf("LoadChannelDefinitions: %v", err)
	}
	if err := stack.ApplyChannelDefinitions(defs); err != nil {
		t.Fatalf("ApplyChannelDefinitions: %v", err)
	}

	if got := len(stack.Channels()); got != 3 {
		t.Fatalf("expected 3 templates, got %d", got)
	}
	if ch := stack.Channel("Normal"); ch == nil || ch.Enabled {
		t.Fatalf("expected Normal disabled, got %+v", ch)
	}
	if def, ok := stack.ChannelDefaultValue("Roughness"); !ok || def != 0.5 {
		t.Fatalf("expected the Roughness default stored, got %v (%v)", def, ok)
	}
}
