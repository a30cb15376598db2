package process

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ReadJSON decodes a process from r and validates node and transition ids.
//
// ReadJSON returns an error if the JSON is malformed or if [Process.Validate]
// fails. It does not close r.
func ReadJSON(r io.Reader) (*Process, error) {
	var p Process
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ImportJSON reads a process from the JSON file at path.
func ImportJSON(path string) (*Process, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadTokensJSON decodes a token list from r. A single token object is
// accepted as a one-element list.
func ReadTokensJSON(r io.Reader) ([]Token, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	var tokens []Token
	if err := json.Unmarshal(raw, &tokens); err == nil {
		return tokens, nil
	}
	var single Token
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}
	return []Token{single}, nil
}

// ImportTokensJSON reads a token list from the JSON file at path.
func ImportTokensJSON(path string) ([]Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTokensJSON(f)
}

type tokenTransitionJSON struct {
	ID           string          `json:"id,omitempty"`
	TransitionID string          `json:"transition"`
	State        State           `json:"state"`
	Exception    json.RawMessage `json:"exception,omitempty"`
	Time         time.Time       `json:"time,omitzero"`
}

// UnmarshalJSON accepts a boolean or a string for the exception field.
func (tt *TokenTransition) UnmarshalJSON(data []byte) error {
	var raw tokenTransitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*tt = TokenTransition{
		ID:           raw.ID,
		TransitionID: raw.TransitionID,
		State:        raw.State,
		Time:         raw.Time,
	}
	if len(raw.Exception) == 0 {
		return nil
	}
	var flag bool
	if err := json.Unmarshal(raw.Exception, &flag); err == nil {
		if flag {
			tt.Exception = "true"
		}
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw.Exception, &msg); err == nil {
		tt.Exception = msg
		return nil
	}
	var v any
	if err := json.Unmarshal(raw.Exception, &v); err != nil {
		return fmt.Errorf("exception: %w", err)
	}
	if v != nil {
		tt.Exception = string(raw.Exception)
	}
	return nil
}
