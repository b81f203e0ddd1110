// Package nodetree models the small procedural graphs that back material
// layers. A tree owns an ordered set of typed output sockets, a set of
// nodes, and the links between them. Value nodes are driven by expressions
// executed through pluggable evaluator engines.
package nodetree

import (
	"fmt"
	"strings"
	"time"
)

// Node names reserved by the package.
const (
	// GroupOutputName is the sink node collecting a layer tree's outputs.
	GroupOutputName  = "layer_output"
	groupOutputLabel = "Layer Output"
	// GeometryNodeName supplies default normal/tangent vectors.
	GeometryNodeName = "geometry"
)

// TreeOption configures a Tree instance.
type TreeOption func(*treeConfig)

type treeConfig struct {
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	logger    EvaluatorLogger
}

// WithEvaluator sets the engine used to evaluate value-node expressions.
func WithEvaluator(e Evaluator) TreeOption {
	return func(cfg *treeConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-program cache for the default engine.
func WithProgramCache(cache ProgramCache) TreeOption {
	return func(cfg *treeConfig) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes custom functions to value expressions.
func WithFunctionRegistry(registry *FunctionRegistry) TreeOption {
	return func(cfg *treeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithEvaluatorLogger records evaluation attempts made during Sample.
func WithEvaluatorLogger(logger EvaluatorLogger) TreeOption {
	return func(cfg *treeConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// Tree is a procedural computation graph with one output socket per channel.
type Tree struct {
	name    string
	outputs []*Socket
	nodes   []*Node
	links   []Link
	cfg     treeConfig
}

// New constructs an empty tree.
func New(name string, opts ...TreeOption) *Tree {
	cfg := treeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Tree{
		name: name,
		cfg:  cfg,
	}
}

// Name returns the tree's name.
func (t *Tree) Name() string {
	return t.name
}

// SetName renames the tree.
func (t *Tree) SetName(name string) {
	t.name = name
}

// Outputs returns the tree's output sockets in order.
func (t *Tree) Outputs() []*Socket {
	out := make([]*Socket, len(t.outputs))
	copy(out, t.outputs)
	return out
}

// OutputNames returns the output socket names in order.
func (t *Tree) OutputNames() []string {
	names := make([]string, len(t.outputs))
	for i, socket := range t.outputs {
		names[i] = socket.Name
	}
	return names
}

// Output returns the output socket with the given name, or nil.
func (t *Tree) Output(name string) *Socket {
	for _, socket := range t.outputs {
		if socket.Name == name {
			return socket
		}
	}
	return nil
}

// EnsureOutput guarantees an output socket named name of the given type,
// creating it when missing and retyping it when present with a different
// type. Vector sockets hide their default value; factor sockets clamp to
// the unit range.
func (t *Tree) EnsureOutput(name string, typ SocketType) *Socket {
	socket := t.Output(name)
	if socket == nil {
		socket = &Socket{
			Name:    name,
			Type:    typ,
			Default: typeDefault(typ),
		}
		t.outputs = append(t.outputs, socket)
	} else if socket.Type != typ {
		socket.Type = typ
		socket.Default = typeDefault(typ)
		socket.HideValue = false
		socket.MinValue = 0
		socket.MaxValue = 0
	}

	switch typ {
	case SocketVector:
		socket.HideValue = true
	case SocketFloatFactor:
		socket.MinValue = 0.0
		socket.MaxValue = 1.0
	}
	return socket
}

// RemoveOutput deletes the named output socket and any links feeding it.
func (t *Tree) RemoveOutput(name string) bool {
	for i, socket := range t.outputs {
		if socket.Name != name {
			continue
		}
		t.outputs = append(t.outputs[:i], t.outputs[i+1:]...)
		t.removeLinksInto(GroupOutputName, name)
		return true
	}
	return false
}

// AddNode appends a node of the given kind, suffixing the name if taken.
func (t *Tree) AddNode(kind NodeKind, name string) *Node {
	node := &Node{
		Name: t.uniqueNodeName(name),
		Kind: kind,
	}
	t.nodes = append(t.nodes, node)
	return node
}

// uniqueNodeName appends a numeric suffix when name is already taken.
func (t *Tree) uniqueNodeName(name string) string {
	if t.Node(name) == nil {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if t.Node(candidate) == nil {
			return candidate
		}
	}
}

// AddValueNode appends an expression-driven value node.
func (t *Tree) AddValueNode(name, expression string) *Node {
	node := t.AddNode(NodeValue, name)
	node.Expression = expression
	return node
}

// AddGroupOutput appends the sink node collecting the tree's outputs.
func (t *Tree) AddGroupOutput() *Node {
	if existing := t.Node(GroupOutputName); existing != nil {
		return existing
	}
	node := t.AddNode(NodeGroupOutput, GroupOutputName)
	node.Label = groupOutputLabel
	return node
}

// Node returns the node with the given name, or nil.
func (t *Tree) Node(name string) *Node {
	for _, node := range t.nodes {
		if node.Name == name {
			return node
		}
	}
	return nil
}

// Nodes returns the tree's nodes in insertion order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// RemoveNode deletes the named node and every link touching it.
func (t *Tree) RemoveNode(name string) bool {
	for i, node := range t.nodes {
		if node.Name != name {
			continue
		}
		t.nodes = append(t.nodes[:i], t.nodes[i+1:]...)
		kept := t.links[:0]
		for _, link := range t.links {
			if link.FromNode != name && link.ToNode != name {
				kept = append(kept, link)
			}
		}
		t.links = kept
		return true
	}
	return false
}

// Clear removes every node and link, keeping the output sockets.
func (t *Tree) Clear() {
	t.nodes = nil
	t.links = nil
}

// LinkNodes connects an output socket of one node to an input socket of
// another, replacing any existing link into the destination socket.
func (t *Tree) LinkNodes(fromNode, fromSocket, toNode, toSocket string) {
	t.removeLinksInto(toNode, toSocket)
	t.links = append(t.links, Link{
		FromNode:   fromNode,
		FromSocket: fromSocket,
		ToNode:     toNode,
		ToSocket:   toSocket,
	})
}

// Links returns the tree's links.
func (t *Tree) Links() []Link {
	out := make([]Link, len(t.links))
	copy(out, t.links)
	return out
}

// LinkInto returns the link feeding the given input socket, or nil.
func (t *Tree) LinkInto(toNode, toSocket string) *Link {
	for i := range t.links {
		if t.links[i].ToNode == toNode && t.links[i].ToSocket == toSocket {
			return &t.links[i]
		}
	}
	return nil
}

func (t *Tree) removeLinksInto(toNode, toSocket string) {
	kept := t.links[:0]
	for _, link := range t.links {
		if link.ToNode != toNode || link.ToSocket != toSocket {
			kept = append(kept, link)
		}
	}
	t.links = kept
}

// EnsureDefaultLink feeds a directional vector output (normal, tangent)
// from the geometry node when nothing else is linked into it. Does nothing
// for other sockets.
func (t *Tree) EnsureDefaultLink(socket *Socket) {
	if socket == nil || socket.Type != SocketVector {
		return
	}
	source := directionalSource(socket.Name)
	if source == "" {
		return
	}
	if t.Node(GroupOutputName) == nil {
		return
	}
	if t.LinkInto(GroupOutputName, socket.Name) != nil {
		return
	}
	if t.Node(GeometryNodeName) == nil {
		t.AddNode(NodeGeometry, GeometryNodeName)
	}
	t.LinkNodes(GeometryNodeName, source, GroupOutputName, socket.Name)
}

// SetVectorDefaults applies EnsureDefaultLink to every output socket.
func (t *Tree) SetVectorDefaults() {
	for _, socket := range t.outputs {
		t.EnsureDefaultLink(socket)
	}
}

// directionalSource maps a directional socket name to the geometry output
// feeding its default value.
func directionalSource(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "normal"):
		return "Normal"
	case strings.Contains(lower, "tangent"):
		return "Tangent"
	default:
		return ""
	}
}

// Sample evaluates every output socket against ctx, returning a value per
// output name. Sockets fed by value nodes run their expressions through
// the configured engine; everything else yields the socket default.
func (t *Tree) Sample(ctx SampleContext) (map[string]any, error) {
	evaluator := t.resolveEvaluator()
	result := make(map[string]any, len(t.outputs))
	for _, socket := range t.outputs {
		link := t.LinkInto(GroupOutputName, socket.Name)
		if link == nil {
			result[socket.Name] = socket.Default
			continue
		}
		node := t.Node(link.FromNode)
		if node == nil || node.Kind != NodeValue {
			result[socket.Name] = socket.Default
			continue
		}

		sampleCtx := ctx
		sampleCtx.Channel = socket.Name
		start := time.Now()
		value, err := evaluator.Evaluate(sampleCtx, node.Expression)
		duration := time.Since(start)
		err = wrapEvaluationError("", node.Expression, sampleCtx.sourceLabel(), err)
		t.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
			Engine:   engineName(evaluator),
			Expr:     node.Expression,
			Source:   sampleCtx.sourceLabel(),
			Duration: duration,
			Err:      err,
		})
		if err != nil {
			return nil, err
		}
		result[socket.Name] = value
	}
	return result, nil
}

func (t *Tree) resolveEvaluator() Evaluator {
	if t.cfg.evaluator != nil {
		return t.cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if t.cfg.cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(t.cfg.cache))
	}
	if t.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(t.cfg.functions))
	}
	t.cfg.evaluator = NewExprEvaluator(exprOpts...)
	return t.cfg.evaluator
}

func (t *Tree) evaluatorLogger() EvaluatorLogger {
	if t.cfg.logger != nil {
		return t.cfg.logger
	}
	return noopEvaluatorLogger{}
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*nodetree.exprEvaluator":
		return "expr"
	case "*nodetree.celEvaluator":
		return "cel"
	case "*nodetree.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
