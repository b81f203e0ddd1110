package activity

import "time"

// Verbs emitted by the layer model.
const (
	VerbLayerInitialized = "layer.initialized"
	VerbLayerDeleted     = "layer.deleted"
	VerbLayerConverted   = "layer.converted"
	VerbChannelAdded     = "channel.added"
	VerbChannelRemoved   = "channel.removed"
	VerbTreeReplaced     = "tree.replaced"
)

// LayerEventInput describes the common fields for layer lifecycle events.
type LayerEventInput struct {
	StackID    string
	LayerID    string
	LayerName  string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildLayerEvent constructs a normalized event for a layer lifecycle verb.
func BuildLayerEvent(verb string, input LayerEventInput) Event {
	return NormalizeEvent(Event{
		Verb:       verb,
		StackID:    input.StackID,
		ObjectType: "layer",
		ObjectID:   input.LayerID,
		ObjectName: input.LayerName,
		Channel:    input.Channel,
		Metadata:   input.Metadata,
		OccurredAt: input.OccurredAt,
	})
}

// BuildChannelEvent constructs a normalized event for a channel-set change.
func BuildChannelEvent(verb string, input LayerEventInput, channelName string) Event {
	metadata := cloneMap(input.Metadata)
	if channelName != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["channel_name"] = channelName
	}
	return NormalizeEvent(Event{
		Verb:       verb,
		StackID:    input.StackID,
		ObjectType: "layer.channel",
		ObjectID:   input.LayerID,
		ObjectName: input.LayerName,
		Channel:    input.Channel,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	})
}
