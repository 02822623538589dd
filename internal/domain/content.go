package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ContentKind tags which arm of a Content variant is populated.
type ContentKind int

const (
	// ContentText is free text (possibly empty).
	ContentText ContentKind = iota
	// ContentStructured is a mapping, usually keyed by standard name.
	ContentStructured
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Content holds reference material that is either free text or a
// structured mapping. The zero value is empty text.
//
// On the wire a Text is a JSON string and a Structured is a JSON object.
// Consumers must switch on Kind rather than probe the payload.
type Content struct {
	kind   ContentKind
	text   string
	fields map[string]any
}

// Text returns a text Content.
func Text(s string) Content {
	return Content{kind: ContentText, text: s}
}

// Structured returns a structured Content. A nil map becomes an empty one.
func Structured(fields map[string]any) Content {
	if fields == nil {
		fields = map[string]any{}
	}
	return Content{kind: ContentStructured, fields: fields}
}

func (c Content) Kind() ContentKind { return c.kind }

// Text returns the text arm, or "" for structured content.
func (c Content) Text() string { return c.text }

// Fields returns the structured arm, or nil for text content.
func (c Content) Fields() map[string]any { return c.fields }

// IsEmpty reports whether c carries nothing worth rendering.
func (c Content) IsEmpty() bool {
	if c.kind == ContentStructured {
		return len(c.fields) == 0
	}
	return strings.TrimSpace(c.text) == ""
}

// Get returns the entry stored under key in a structured Content,
// e.g. differences.Get("PRINCE2"). Text content has no entries.
func (c Content) Get(key string) Content {
	if c.kind != ContentStructured {
		return Content{}
	}
	v, ok := c.fields[key]
	if !ok {
		return Content{}
	}
	out, err := contentFromValue(v)
	if err != nil {
		return Text(fmt.Sprint(v))
	}
	return out
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.kind == ContentStructured {
		if c.fields == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(c.fields)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts a string, an object, null, an array of scalars
// (joined with newlines) or a bare number/boolean.
func (c *Content) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("content: %w", err)
	}

	out, err := contentFromValue(v)
	if err != nil {
		return err
	}
	*c = out
	return nil
}

func contentFromValue(v any) (Content, error) {
	switch val := v.(type) {
	case nil:
		return Content{}, nil
	case string:
		return Text(val), nil
	case map[string]any:
		return Structured(val), nil
	case []any:
		lines := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := scalarString(item)
			if !ok {
				return Content{}, fmt.Errorf("content: unsupported list element %d of type %T", i, item)
			}
			lines = append(lines, s)
		}
		return Text(strings.Join(lines, "\n")), nil
	default:
		s, ok := scalarString(val)
		if !ok {
			return Content{}, fmt.Errorf("content: unsupported value of type %T", v)
		}
		return Text(s), nil
	}
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}
