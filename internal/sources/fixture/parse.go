package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/jsonc"
)

const (
	topicsKey    = "topics"
	scenariosKey = "scenarios"
)

var errNotObject = errors.New("expected a JSON object")

// Parse decodes a fixture file. ext selects the syntax: ".yaml"/".yml" go
// through the YAML converter, anything else is read as JSON with comments
// and trailing commas allowed.
func Parse(data []byte, ext string) (*Dataset, error) {
	var (
		doc []byte
		err error
	)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		doc, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing fixture yaml: %w", err)
		}
	default:
		doc = jsonc.ToJSON(data)
	}

	top, err := orderedObject(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	topics, scenarios, err := split(top)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	return NewMapper().Map(topics, scenarios)
}

// split extracts the topics and scenarios sections. A document with neither
// key is a bare topics mapping.
func split(top []entry) (topics, scenarios []entry, err error) {
	var topicsRaw, scenariosRaw json.RawMessage
	for _, e := range top {
		switch e.key {
		case topicsKey:
			topicsRaw = e.raw
		case scenariosKey:
			scenariosRaw = e.raw
		}
	}

	if topicsRaw == nil && scenariosRaw == nil {
		return top, nil, nil
	}

	if topics, err = section(topicsRaw); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", topicsKey, err)
	}
	if scenarios, err = section(scenariosRaw); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", scenariosKey, err)
	}
	return topics, scenarios, nil
}

// section reads a keyed mapping. Arrays are accepted too; their members are
// keyed by position and the mapper falls back to the member's own key/name.
func section(raw json.RawMessage) ([]entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '[' {
		return orderedObject(trimmed)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(items))
	for _, item := range items {
		out = append(out, entry{raw: item})
	}
	return out, nil
}

// orderedObject decodes the members of a JSON object keeping their order.
// A repeated key keeps its first position and its last value.
func orderedObject(data []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNotObject
		}
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var out []entry
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}

		if i, dup := seen[key]; dup {
			out[i].raw = raw
			continue
		}
		seen[key] = len(out)
		out = append(out, entry{key: key, raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
