package layers

import (
	"fmt"

	"github.com/goliatone/go-material-layers/internal/hydrate"
)

// Preferences holds host-supplied configuration for the layer model.
type Preferences struct {
	// ShowPreviews enables lazy creation of preview materials.
	ShowPreviews bool `yaml:"show_previews"`
	// SharedImages makes paint layers share one raster buffer channel
	// each instead of owning a dedicated buffer.
	SharedImages bool `yaml:"shared_images"`
	ImageWidth   int  `yaml:"image_width"`
	ImageHeight  int  `yaml:"image_height"`
	// MaxHierarchyDepth bounds every ancestor walk; exceeding it reports
	// a cycle.
	MaxHierarchyDepth int `yaml:"max_hierarchy_depth"`
}

// DefaultPreferences returns the preferences used when the host supplies none.
func DefaultPreferences() Preferences {
	return Preferences{
		ShowPreviews:      true,
		SharedImages:      true,
		ImageWidth:        1024,
		ImageHeight:       1024,
		MaxHierarchyDepth: 100,
	}
}

// Validate reports malformed preference values.
func (p Preferences) Validate() error {
	if p.ImageWidth <= 0 || p.ImageHeight <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidArgument, p.ImageWidth, p.ImageHeight)
	}
	if p.MaxHierarchyDepth <= 0 {
		return fmt.Errorf("%w: max hierarchy depth %d", ErrInvalidArgument, p.MaxHierarchyDepth)
	}
	return nil
}

// LoadPreferences decodes a YAML payload into Preferences, filling absent
// fields with defaults.
func LoadPreferences(payload []byte) (Preferences, error) {
	decoder := hydrate.NewDecoder(
		hydrate.WithPreHook[Preferences](applyPreferenceDefaults),
		hydrate.WithPostHook[Preferences](func(_ hydrate.Context, prefs *Preferences) error {
			return prefs.Validate()
		}),
	)
	return decoder.Decode(hydrate.Context{Name: "preferences"}, payload)
}

func applyPreferenceDefaults(_ hydrate.Context, raw map[string]any) (map[string]any, error) {
	defaults := DefaultPreferences()
	if _, ok := raw["show_previews"]; !ok {
		raw["show_previews"] = defaults.ShowPreviews
	}
	if _, ok := raw["shared_images"]; !ok {
		raw["shared_images"] = defaults.SharedImages
	}
	if _, ok := raw["image_width"]; !ok {
		raw["image_width"] = defaults.ImageWidth
	}
	if _, ok := raw["image_height"]; !ok {
		raw["image_height"] = defaults.ImageHeight
	}
	if _, ok := raw["max_hierarchy_depth"]; !ok {
		raw["max_hierarchy_depth"] = defaults.MaxHierarchyDepth
	}
	return raw, nil
}
