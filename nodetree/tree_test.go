package nodetree

import (
	"errors"
	"testing"
)

func TestEnsureOutputCreatesAndRetypes(t *testing.T) {
	tree := New(".test")

	socket := tree.EnsureOutput("Roughness", SocketFloat)
	if socket == nil || socket.Type != SocketFloat {
		t.Fatalf("expected a float output, got %+v", socket)
	}
	if socket.Default != 0.0 {
		t.Fatalf("expected the float default, got %v", socket.Default)
	}

	retyped := tree.EnsureOutput("Roughness", SocketFloatFactor)
	if retyped != socket {
		t.Fatalf("retyping must reuse the socket")
	}
	if retyped.Type != SocketFloatFactor || retyped.MinValue != 0 || retyped.MaxValue != 1 {
		t.Fatalf("expected a clamped factor socket, got %+v", retyped)
	}
	if got := len(tree.Outputs()); got != 1 {
		t.Fatalf("expected one output, got %d", got)
	}

	vector := tree.EnsureOutput("Normal", SocketVector)
	if !vector.HideValue {
		t.Fatalf("vector outputs must hide their default value")
	}
}

func TestRemoveOutputDropsFeedingLinks(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	tree.EnsureOutput("Color", SocketColor)
	value := tree.AddValueNode("tint", "base * 2")
	tree.LinkNodes(value.Name, "Value", GroupOutputName, "Color")

	if !tree.RemoveOutput("Color") {
		t.Fatalf("expected the output removed")
	}
	if got := len(tree.Links()); got != 0 {
		t.Fatalf("expected the feeding link dropped, got %d links", got)
	}
	if tree.RemoveOutput("Color") {
		t.Fatalf("removing twice must report a miss")
	}
}

func TestAddNodeSuffixesDuplicateNames(t *testing.T) {
	tree := New(".test")
	first := tree.AddNode(NodeValue, "noise")
	second := tree.AddNode(NodeValue, "noise")
	if first.Name != "noise" || second.Name != "noise.001" {
		t.Fatalf("expected noise/noise.001, got %q/%q", first.Name, second.Name)
	}
}

func TestAddGroupOutputIsIdempotent(t *testing.T) {
	tree := New(".test")
	first := tree.AddGroupOutput()
	second := tree.AddGroupOutput()
	if first != second {
		t.Fatalf("expected a single group output node")
	}
	if first.Label != "Layer Output" {
		t.Fatalf("unexpected label %q", first.Label)
	}
}

func TestVectorDefaultsWireGeometry(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	tree.EnsureOutput("Normal", SocketVector)
	tree.EnsureOutput("Tangent", SocketVector)
	tree.EnsureOutput("Color", SocketColor)
	tree.SetVectorDefaults()

	if tree.Node(GeometryNodeName) == nil {
		t.Fatalf("expected a geometry node")
	}
	for socket, source := range map[string]string{"Normal": "Normal", "Tangent": "Tangent"} {
		link := tree.LinkInto(GroupOutputName, socket)
		if link == nil || link.FromNode != GeometryNodeName || link.FromSocket != source {
			t.Fatalf("expected %s fed from geometry %s, got %+v", socket, source, link)
		}
	}
	if link := tree.LinkInto(GroupOutputName, "Color"); link != nil {
		t.Fatalf("non-directional outputs must stay unlinked, got %+v", link)
	}
}

func TestEnsureDefaultLinkKeepsExistingLink(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	socket := tree.EnsureOutput("Normal", SocketVector)
	bump := tree.AddValueNode("bump", "height")
	tree.LinkNodes(bump.Name, "Value", GroupOutputName, "Normal")

	tree.EnsureDefaultLink(socket)
	link := tree.LinkInto(GroupOutputName, "Normal")
	if link == nil || link.FromNode != bump.Name {
		t.Fatalf("an existing link must win over the geometry default, got %+v", link)
	}
}

func TestLinkNodesReplacesDestination(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	tree.EnsureOutput("Color", SocketColor)
	a := tree.AddValueNode("a", "1")
	b := tree.AddValueNode("b", "2")

	tree.LinkNodes(a.Name, "Value", GroupOutputName, "Color")
	tree.LinkNodes(b.Name, "Value", GroupOutputName, "Color")

	if got := len(tree.Links()); got != 1 {
		t.Fatalf("expected the old link replaced, got %d links", got)
	}
	if link := tree.LinkInto(GroupOutputName, "Color"); link.FromNode != b.Name {
		t.Fatalf("expected the newest source, got %q", link.FromNode)
	}
}

func TestRemoveNodeDropsTouchingLinks(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	tree.EnsureOutput("Color", SocketColor)
	value := tree.AddValueNode("v", "1")
	tree.LinkNodes(value.Name, "Value", GroupOutputName, "Color")

	if !tree.RemoveNode(value.Name) {
		t.Fatalf("expected the node removed")
	}
	if got := len(tree.Links()); got != 0 {
		t.Fatalf("expected no links left, got %d", got)
	}
}

func TestSampleUsesDefaultsAndExpressions(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	tree.EnsureOutput("Roughness", SocketFloatFactor).Default = 0.4
	tree.EnsureOutput("Metallic", SocketFloat)
	value := tree.AddValueNode("rough", "base * 2")
	tree.LinkNodes(value.Name, "Value", GroupOutputName, "Roughness")

	got, err := tree.Sample(SampleContext{
		Inputs:  map[string]any{"base": 0.25},
		Layer:   "Base",
		Channel: "Roughness",
	})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got["Roughness"] != 0.5 {
		t.Fatalf("expected the expression result 0.5, got %v", got["Roughness"])
	}
	if got["Metallic"] != 0.0 {
		t.Fatalf("expected the socket default, got %v", got["Metallic"])
	}
}

func TestSampleReportsEvaluationErrors(t *testing.T) {
	tree := New(".test")
	tree.AddGroupOutput()
	tree.EnsureOutput("Roughness", SocketFloat)
	value := tree.AddValueNode("bad", "1 +")
	tree.LinkNodes(value.Name, "Value", GroupOutputName, "Roughness")

	_, err := tree.Sample(SampleContext{Layer: "Base", Channel: "Roughness"})
	if err == nil {
		t.Fatalf("expected an evaluation error")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected an EvaluationError, got %T", err)
	}
	if evalErr.Source != "Base/Roughness" {
		t.Fatalf("expected the layer/channel source label, got %q", evalErr.Source)
	}
}

func TestSampleLogsEvaluations(t *testing.T) {
	var events []EvaluatorLogEvent
	tree := New(".test", WithEvaluatorLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})))
	tree.AddGroupOutput()
	tree.EnsureOutput("Roughness", SocketFloat)
	value := tree.AddValueNode("rough", "0.5")
	tree.LinkNodes(value.Name, "Value", GroupOutputName, "Roughness")

	if _, err := tree.Sample(SampleContext{Layer: "Base", Channel: "Roughness"}); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one log event, got %d", len(events))
	}
	if events[0].Engine != "expr" || events[0].Expr != "0.5" || events[0].Err != nil {
		t.Fatalf("unexpected log event %+v", events[0])
	}
}
