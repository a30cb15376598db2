package process

import (
	"errors"
	"strings"
	"testing"
)

func linear() *Process {
	return &Process{
		Nodes: []Node{{ID: "A"}, {ID: "B", Label: "Bee"}, {ID: "C"}},
		Transitions: []Transition{
			{ID: "t0", To: "A"},
			{ID: "t1", From: "A", To: "B"},
			{ID: "t2", From: "B", To: "C"},
		},
	}
}

func TestOutTransitions(t *testing.T) {
	p := linear()

	tests := []struct {
		node string
		want []string
	}{
		{"A", []string{"t1"}},
		{"B", []string{"t2"}},
		{"C", nil},
		{"missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			got := p.OutTransitions(tt.node)
			if len(got) != len(tt.want) {
				t.Fatalf("OutTransitions(%s) = %d transitions, want %d", tt.node, len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("OutTransitions(%s)[%d] = %s, want %s", tt.node, i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	p := linear()
	if p.IsTerminal("A") {
		t.Error("A should not be terminal")
	}
	if !p.IsTerminal("C") {
		t.Error("C should be terminal")
	}
}

func TestInTransitions(t *testing.T) {
	p := linear()
	in := p.InTransitions("A")
	if len(in) != 1 || in[0].ID != "t0" {
		t.Errorf("InTransitions(A) = %v, want [t0]", in)
	}
}

func TestTransitionKinds(t *testing.T) {
	tests := []struct {
		name      string
		tr        Transition
		start     bool
		middle    bool
		malformed bool
	}{
		{"start", Transition{ID: "s", To: "A"}, true, false, false},
		{"middle", Transition{ID: "m", From: "A", To: "B"}, false, true, false},
		{"malformed", Transition{ID: "x"}, false, false, true},
		{"dangling from", Transition{ID: "d", From: "A"}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.IsStart(); got != tt.start {
				t.Errorf("IsStart() = %v, want %v", got, tt.start)
			}
			if got := tt.tr.IsMiddle(); got != tt.middle {
				t.Errorf("IsMiddle() = %v, want %v", got, tt.middle)
			}
			if got := tt.tr.IsMalformed(); got != tt.malformed {
				t.Errorf("IsMalformed() = %v, want %v", got, tt.malformed)
			}
		})
	}
}

func TestNodeLookup(t *testing.T) {
	p := linear()
	n, err := p.Node("B")
	if err != nil {
		t.Fatalf("Node(B): %v", err)
	}
	if n.DisplayLabel() != "Bee" {
		t.Errorf("DisplayLabel() = %q, want Bee", n.DisplayLabel())
	}

	_, err = p.Node("nope")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Node(nope) error = %v, want ErrNodeNotFound", err)
	}

	_, err = p.Transition("nope")
	if !errors.Is(err, ErrTransitionNotFound) {
		t.Errorf("Transition(nope) error = %v, want ErrTransitionNotFound", err)
	}
}

func TestDisplayLabelFallsBackToID(t *testing.T) {
	n := Node{ID: "review", Label: "  "}
	if got := n.DisplayLabel(); got != "review" {
		t.Errorf("DisplayLabel() = %q, want review", got)
	}
}

func TestOptionAndConfig(t *testing.T) {
	n := Node{
		ID:      "a",
		Options: map[string]any{"type": "gateway", "database_id": float64(42)},
		Config: map[string]any{
			"visual":         map[string]any{"color": "#123456"},
			"visual.tooltip": "flat key",
		},
	}
	if got := n.Option(OptionType); got != "gateway" {
		t.Errorf("Option(type) = %q", got)
	}
	if got := n.Option(OptionDatabaseID); got != "42" {
		t.Errorf("Option(database_id) = %q, want 42", got)
	}
	if got := n.Option(OptionGroup); got != "" {
		t.Errorf("Option(group) = %q, want empty", got)
	}
	if got := n.ConfigValue(ConfigVisualColor); got != "#123456" {
		t.Errorf("ConfigValue(visual.color) = %q", got)
	}
	if got := n.ConfigValue(ConfigVisualTooltip); got != "flat key" {
		t.Errorf("ConfigValue(visual.tooltip) = %q", got)
	}
	if got := n.ConfigValue("visual.missing"); got != "" {
		t.Errorf("ConfigValue(visual.missing) = %q, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Process
		wantErr error
	}{
		{"valid", *linear(), nil},
		{"duplicate node", Process{Nodes: []Node{{ID: "a"}, {ID: "a"}}}, ErrDuplicateNodeID},
		{"empty node id", Process{Nodes: []Node{{}}}, ErrEmptyID},
		{"duplicate transition", Process{Transitions: []Transition{{ID: "t"}, {ID: "t"}}}, ErrDuplicateTransitionID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	src := `{
	  "nodes": [{"id": "A", "options": {"type": "gateway", "group": "g1"}}, {"id": "B"}],
	  "transitions": [{"id": "t0", "to": "A"}, {"id": "t1", "from": "A", "to": "B", "name": "go", "database_id": "17"}]
	}`
	p, err := ReadJSON(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(p.Nodes) != 2 || len(p.Transitions) != 2 {
		t.Fatalf("got %d nodes, %d transitions", len(p.Nodes), len(p.Transitions))
	}
	if p.Nodes[0].Option(OptionGroup) != "g1" {
		t.Errorf("group option not decoded")
	}
	if p.Transitions[1].DatabaseID != "17" || p.Transitions[1].Name != "go" {
		t.Errorf("transition fields not decoded: %+v", p.Transitions[1])
	}
}

func TestReadJSONRejectsDuplicates(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"nodes":[{"id":"a"},{"id":"a"}],"transitions":[]}`))
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("ReadJSON error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestReadTokensJSON(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		tokens    int
		exception string
	}{
		{"list with bool", `[{"id":"k","transitions":[{"transition":"t1","state":"passed","exception":true}]}]`, 1, "true"},
		{"single object", `{"id":"k","transitions":[{"transition":"t1","state":"waiting"}]}`, 1, ""},
		{"string exception", `[{"id":"k","transitions":[{"transition":"t1","state":"interrupted","exception":"boom"}]}]`, 1, "boom"},
		{"false exception", `[{"id":"k","transitions":[{"transition":"t1","state":"passed","exception":false}]}]`, 1, ""},
		{"null exception", `[{"id":"k","transitions":[{"transition":"t1","state":"passed","exception":null}]}]`, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := ReadTokensJSON(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("ReadTokensJSON: %v", err)
			}
			if len(tokens) != tt.tokens {
				t.Fatalf("got %d tokens, want %d", len(tokens), tt.tokens)
			}
			tr := tokens[0].Transitions[0]
			if tr.Exception != tt.exception {
				t.Errorf("Exception = %q, want %q", tr.Exception, tt.exception)
			}
			if tr.HasException() != (tt.exception != "") {
				t.Errorf("HasException() = %v", tr.HasException())
			}
		})
	}
}
