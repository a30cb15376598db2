package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/pipeline"
	"github.com/matzehuels/pvmviz/pkg/process"
)

func newTestWatch(t *testing.T, tokensPath string) watchModel {
	t.Helper()
	dir := t.TempDir()
	req, err := loadRequest(writeFile(t, dir, "review.json", reviewJSON), "", Config{})
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(nil, nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	g, _, err := runner.Build(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return newWatchModel(g, req.Process, tokensPath, time.Second, runner.OverlayOptions(context.Background(), req))
}

func stateOf(m watchModel, transition string) process.State {
	for _, s := range overlay.States(m.graph) {
		if s.TransitionID == transition {
			return s.State
		}
	}
	return ""
}

func TestWatchLoadsTokens(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tokens.json", reviewTokensJSON)
	m := newTestWatch(t, path)

	msg := loadTokens(path, time.Time{}, false)()
	next, cmd := m.Update(msg)
	m = next.(watchModel)

	if cmd == nil {
		t.Error("a tokens update should schedule the next poll")
	}
	if m.err != nil {
		t.Fatalf("err = %v", m.err)
	}
	if got := stateOf(m, "submit"); got != process.StatePassed {
		t.Errorf("submit = %q, want passed", got)
	}
	if got := stateOf(m, "ok"); got != process.StateWaiting {
		t.Errorf("ok = %q, want waiting", got)
	}

	view := m.View()
	for _, want := range []string{"Watching review", "submit", "waiting", "1 tokens"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestWatchUnchangedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tokens.json", reviewTokensJSON)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	msg := loadTokens(path, info.ModTime(), false)().(tokensMsg)
	if msg.tokens != nil || msg.err != nil {
		t.Errorf("unchanged file should produce an empty message, got %+v", msg)
	}
}

func TestWatchConverges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tokens.json", reviewTokensJSON)
	m := newTestWatch(t, path)
	m = m.apply(loadTokens(path, time.Time{}, false)().(tokensMsg))

	// The token moves on: ok has now passed.
	writeFile(t, dir, "tokens.json", `[{"id": "tok-1", "transitions": [
		{"transition": "submit", "state": "passed"},
		{"transition": "ok", "state": "passed"}
	]}]`)
	m = m.apply(loadTokens(path, time.Time{}, false)().(tokensMsg))
	if got := stateOf(m, "ok"); got != process.StatePassed {
		t.Errorf("ok = %q, want passed", got)
	}

	// A stale file that reports waiting again must not move the edge back.
	writeFile(t, dir, "tokens.json", reviewTokensJSON)
	m = m.apply(loadTokens(path, time.Time{}, false)().(tokensMsg))
	if got := stateOf(m, "ok"); got != process.StatePassed {
		t.Errorf("ok = %q after stale update, want passed", got)
	}
}

func TestWatchErrors(t *testing.T) {
	m := newTestWatch(t, "missing.json")

	m = m.apply(loadTokens("missing.json", time.Time{}, false)().(tokensMsg))
	if m.err == nil {
		t.Fatal("missing tokens file should surface an error")
	}
	if !strings.Contains(m.View(), "missing.json") {
		t.Error("view should show the error")
	}

	m = m.apply(tokensMsg{tokens: []process.Token{{ID: "t", Transitions: []process.TokenTransition{
		{TransitionID: "ghost", State: process.StatePassed},
	}}}})
	if m.err == nil {
		t.Error("unknown transition should surface an error")
	}
}

func TestWatchQuit(t *testing.T) {
	m := newTestWatch(t, "tokens.json")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.QuitMsg")
	}
}

func TestWatchTickReloads(t *testing.T) {
	m := newTestWatch(t, "missing.json")

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule a reload")
	}
	msg, ok := cmd().(tokensMsg)
	if !ok || !errors.Is(msg.err, os.ErrNotExist) {
		t.Errorf("reload of missing file = %+v", msg)
	}
}

func TestWatchManualReloadKeepsOnePoller(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tokens.json", reviewTokensJSON)
	m := newTestWatch(t, path)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("r should reload the tokens file")
	}
	msg, ok := cmd().(tokensMsg)
	if !ok || !msg.manual {
		t.Fatalf("r produced %+v", msg)
	}
	next, cmd := m.Update(msg)
	m = next.(watchModel)
	if cmd != nil {
		t.Error("a manual reload must not schedule another poll")
	}
	if got := stateOf(m, "submit"); got != process.StatePassed {
		t.Errorf("submit = %q, want passed", got)
	}

	// The polling loop itself keeps going.
	_, cmd = m.Update(loadTokens(path, time.Time{}, false)())
	if cmd == nil {
		t.Error("a polled update should schedule the next poll")
	}
}
