package nodetree

// NodeKind enumerates the node types a tree can hold.
type NodeKind int

const (
	// NodeGroupOutput is the sink node collecting the tree's outputs.
	NodeGroupOutput NodeKind = iota
	// NodeValue produces a value by evaluating an expression.
	NodeValue
	// NodeGeometry supplies geometry-derived vectors (normal, tangent).
	NodeGeometry
	// NodeGroup embeds another tree by reference. The reference is
	// non-owning; the embedded tree keeps its own lifecycle.
	NodeGroup
	// NodeShader is a shading node used by preview trees.
	NodeShader
	// NodeOutputMaterial terminates a preview tree.
	NodeOutputMaterial
)

func (k NodeKind) String() string {
	switch k {
	case NodeGroupOutput:
		return "group_output"
	case NodeValue:
		return "value"
	case NodeGeometry:
		return "geometry"
	case NodeGroup:
		return "group"
	case NodeShader:
		return "shader"
	case NodeOutputMaterial:
		return "output_material"
	default:
		return "unknown"
	}
}

// Node is a single element of a tree.
type Node struct {
	Name  string
	Label string
	Kind  NodeKind

	// Expression drives NodeValue nodes.
	Expression string

	// Tree is the embedded tree for NodeGroup nodes.
	Tree *Tree
}

// Link connects an output socket of one node to an input socket of another.
type Link struct {
	FromNode   string
	FromSocket string
	ToNode     string
	ToSocket   string
}
