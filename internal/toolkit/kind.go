package toolkit

// Kind classifies a tool by its effect on state.
type Kind string

const (
	// KindRead tools only observe state.
	KindRead Kind = "READ"
	// KindWrite tools may change state.
	KindWrite Kind = "WRITE"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindRead || k == KindWrite
}

// Definition describes a tool or assertion without invoking it.
// Kind is empty for assertions.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Kind        Kind    `json:"kind,omitempty"`
	Params      []Param `json:"params"`
}
