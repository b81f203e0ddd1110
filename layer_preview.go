package layers

import "github.com/goliatone/go-material-layers/nodetree"

// Node names inside a layer's preview material.
const (
	previewGroupNodeName  = "ma_group"
	previewShaderNodeName = "preview_shader"
	previewOutputNodeName = "preview_output"
)

// previewMaterial is the throwaway material used to preview a single layer
// in isolation: the layer's node tree feeding a shader node.
type previewMaterial struct {
	name string
	tree *nodetree.Tree
}

func (l *Layer) previewMaterialName() string {
	stackName := ""
	if l.stack != nil {
		stackName = l.stack.name
	}
	return "." + stackName + "." + l.name + ".preview"
}

// createPreviewMaterial builds the preview from scratch, replacing any
// existing one.
func (l *Layer) createPreviewMaterial() {
	if !l.IsInitialized() || l.tree == nil {
		return
	}
	tree := nodetree.New(l.previewMaterialName())

	group := tree.AddNode(nodetree.NodeGroup, previewGroupNodeName)
	group.Tree = l.tree
	shader := tree.AddNode(nodetree.NodeShader, previewShaderNodeName)
	output := tree.AddNode(nodetree.NodeOutputMaterial, previewOutputNodeName)

	l.linkPreviewChannels(tree)
	tree.LinkNodes(shader.Name, "BSDF", output.Name, "Surface")

	l.preview = &previewMaterial{name: tree.Name(), tree: tree}
}

// refreshPreviewMaterial relinks the preview to the layer's current
// channels, recreating it when its expected nodes have gone missing.
func (l *Layer) refreshPreviewMaterial() {
	if l.preview == nil {
		return
	}
	tree := l.preview.tree
	if tree.Node(previewGroupNodeName) == nil || tree.Node(previewShaderNodeName) == nil {
		l.logger().Warnf("preview material for layer %q lost its nodes, recreating", l.name)
		l.createPreviewMaterial()
		return
	}
	if group := tree.Node(previewGroupNodeName); group != nil {
		group.Tree = l.tree
	}
	l.linkPreviewChannels(tree)
	l.preview.name = l.previewMaterialName()
	tree.SetName(l.preview.name)
}

// linkPreviewChannels feeds every enabled channel of the layer from the
// group node into the preview shader's matching input.
func (l *Layer) linkPreviewChannels(tree *nodetree.Tree) {
	for _, ch := range l.channels {
		if !ch.Enabled {
			continue
		}
		tree.LinkNodes(previewGroupNodeName, ch.Name, previewShaderNodeName, ch.Name)
	}
}

func (l *Layer) deletePreviewMaterial() {
	l.preview = nil
}
