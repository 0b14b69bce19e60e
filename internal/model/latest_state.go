package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LatestState is the term→status heatmap mapping. The rendering order of
// the heatmap is the key order of the source mapping, which a plain Go map
// cannot carry: decoding walks the JSON token stream and records each term
// as it first appears, and encoding writes the terms back in that order.
type LatestState struct {
	terms  []string
	status map[string]TermStatus
}

// Set records a term's status. A new term is appended to the order; an
// existing term keeps its position and overwrites its status.
func (s *LatestState) Set(term string, st TermStatus) {
	if s.status == nil {
		s.status = make(map[string]TermStatus)
	}
	if _, ok := s.status[term]; !ok {
		s.terms = append(s.terms, term)
	}
	s.status[term] = st
}

// Get looks up a term's status.
func (s LatestState) Get(term string) (TermStatus, bool) {
	st, ok := s.status[term]
	return st, ok
}

// Terms lists the terms in source order.
func (s LatestState) Terms() []string { return s.terms }

// Len is the number of terms.
func (s LatestState) Len() int { return len(s.terms) }

func (s LatestState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, term := range s.terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(term)
		if err != nil {
			return nil, fmt.Errorf("encode latest_state key %q: %w", term, err)
		}
		val, err := json.Marshal(s.status[term])
		if err != nil {
			return nil, fmt.Errorf("encode latest_state value for %q: %w", term, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *LatestState) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode latest_state: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode latest_state: expected object, got %v", tok)
	}
	var out LatestState
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode latest_state key: %w", err)
		}
		term, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode latest_state: unexpected key token %v", keyTok)
		}
		var st TermStatus
		if err := dec.Decode(&st); err != nil {
			return fmt.Errorf("decode latest_state value for %q: %w", term, err)
		}
		out.Set(term, st)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode latest_state: %w", err)
	}
	*s = out
	return nil
}
