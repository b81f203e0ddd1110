package nodetree

// SocketType identifies the value type carried by an output socket.
type SocketType int

const (
	SocketFloat SocketType = iota
	SocketFloatFactor
	SocketColor
	SocketVector
	SocketShader
)

func (t SocketType) String() string {
	switch t {
	case SocketFloat:
		return "float"
	case SocketFloatFactor:
		return "float_factor"
	case SocketColor:
		return "color"
	case SocketVector:
		return "vector"
	case SocketShader:
		return "shader"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a recognized socket type.
func (t SocketType) Valid() bool {
	return t >= SocketFloat && t <= SocketShader
}

// Socket is a named, typed output of a tree.
type Socket struct {
	Name      string
	Type      SocketType
	Default   any
	HideValue bool
	MinValue  float64
	MaxValue  float64
}

// typeDefault returns the zero value a freshly created socket carries.
func typeDefault(t SocketType) any {
	switch t {
	case SocketColor:
		return []float64{0, 0, 0, 1}
	case SocketVector:
		return []float64{0, 0, 0}
	case SocketFloat, SocketFloatFactor:
		return 0.0
	default:
		return nil
	}
}
