package process

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned by [Process.Node] when no node carries the id.
	ErrNodeNotFound = errors.New("node not found")

	// ErrTransitionNotFound is returned by [Process.Transition] when no
	// transition carries the id.
	ErrTransitionNotFound = errors.New("transition not found")

	// ErrDuplicateNodeID is returned by [Process.Validate] when two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateTransitionID is returned by [Process.Validate] when two
	// transitions share an id.
	ErrDuplicateTransitionID = errors.New("duplicate transition ID")

	// ErrEmptyID is returned by [Process.Validate] for nodes or transitions
	// without an id.
	ErrEmptyID = errors.New("id must not be empty")
)

// Recognized node option keys.
const (
	OptionType       = "type"
	OptionGroup      = "group"
	OptionDatabaseID = "database_id"
)

// Recognized node config paths.
const (
	ConfigVisualColor   = "visual.color"
	ConfigVisualTooltip = "visual.tooltip"
)

// Node is a single step of a process.
type Node struct {
	ID      string         `json:"id"`
	Label   string         `json:"label,omitempty"`
	Options map[string]any `json:"options,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// DisplayLabel returns the label, or the id when the label is blank.
func (n Node) DisplayLabel() string {
	if strings.TrimSpace(n.Label) == "" {
		return n.ID
	}
	return n.Label
}

// Option returns the string form of an option value, or "" when unset.
// Numeric ids decoded from JSON are formatted without a fractional part.
func (n Node) Option(key string) string {
	return stringify(n.Options[key])
}

// ConfigValue looks up a dotted path such as "visual.color" in the node's
// nested config. A literal key containing the dots is tried first.
func (n Node) ConfigValue(path string) string {
	if v, ok := n.Config[path]; ok {
		return stringify(v)
	}
	var cur any = n.Config
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		if cur, ok = m[part]; !ok {
			return ""
		}
	}
	return stringify(cur)
}

// Transition is a directed connection between two nodes. From is empty for
// start transitions.
type Transition struct {
	ID         string `json:"id"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Name       string `json:"name,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// IsStart reports whether the transition enters the process from outside.
func (t Transition) IsStart() bool { return t.From == "" && t.To != "" }

// IsMiddle reports whether the transition connects two process nodes.
func (t Transition) IsMiddle() bool { return t.From != "" && t.To != "" }

// IsMalformed reports whether the transition has neither endpoint.
func (t Transition) IsMalformed() bool { return t.From == "" && t.To == "" }

// Process is an ordered collection of nodes and transitions.
// Iteration order is declaration order; nothing is sorted implicitly.
//
// The zero value is an empty process. Lookups build their indexes lazily
// on first use, so a Process must not be modified after it has been queried.
type Process struct {
	ID          string       `json:"id,omitempty"`
	Nodes       []Node       `json:"nodes"`
	Transitions []Transition `json:"transitions"`

	nodeIdx map[string]int
	out     map[string][]int
	in      map[string][]int
}

func (p *Process) index() {
	if p.nodeIdx != nil {
		return
	}
	p.nodeIdx = make(map[string]int, len(p.Nodes))
	for i, n := range p.Nodes {
		if _, seen := p.nodeIdx[n.ID]; !seen {
			p.nodeIdx[n.ID] = i
		}
	}
	p.out = make(map[string][]int)
	p.in = make(map[string][]int)
	for i, t := range p.Transitions {
		if t.From != "" {
			p.out[t.From] = append(p.out[t.From], i)
		}
		if t.To != "" {
			p.in[t.To] = append(p.in[t.To], i)
		}
	}
}

// Node returns the node with the given id.
func (p *Process) Node(id string) (Node, error) {
	if id == "" {
		return Node{}, fmt.Errorf("node id empty")
	}
	p.index()
	i, ok := p.nodeIdx[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return p.Nodes[i], nil
}

// Transition returns the transition with the given id.
func (p *Process) Transition(id string) (Transition, error) {
	if id == "" {
		return Transition{}, fmt.Errorf("transition id empty")
	}
	for i := range p.Transitions {
		if p.Transitions[i].ID == id {
			return p.Transitions[i], nil
		}
	}
	return Transition{}, fmt.Errorf("%w: %s", ErrTransitionNotFound, id)
}

// OutTransitions returns all transitions whose From equals nodeID, in
// declaration order. Returns nil for unknown or terminal nodes.
func (p *Process) OutTransitions(nodeID string) []Transition {
	p.index()
	return p.pick(p.out[nodeID])
}

// InTransitions returns all transitions whose To equals nodeID.
func (p *Process) InTransitions(nodeID string) []Transition {
	p.index()
	return p.pick(p.in[nodeID])
}

// IsTerminal reports whether the node has no outgoing transitions.
func (p *Process) IsTerminal(nodeID string) bool {
	p.index()
	return len(p.out[nodeID]) == 0
}

func (p *Process) pick(idx []int) []Transition {
	if len(idx) == 0 {
		return nil
	}
	ts := make([]Transition, len(idx))
	for i, j := range idx {
		ts[i] = p.Transitions[j]
	}
	return ts
}

// Validate checks that node and transition ids are present and unique.
// Dangling or malformed transitions are not an error here; the compiler
// tolerates them.
func (p *Process) Validate() error {
	nodes := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node: %w", ErrEmptyID)
		}
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		nodes[n.ID] = struct{}{}
	}
	transitions := make(map[string]struct{}, len(p.Transitions))
	for _, t := range p.Transitions {
		if t.ID == "" {
			return fmt.Errorf("transition: %w", ErrEmptyID)
		}
		if _, dup := transitions[t.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTransitionID, t.ID)
		}
		transitions[t.ID] = struct{}{}
	}
	return nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "true"
		}
		return ""
	default:
		return fmt.Sprint(x)
	}
}
