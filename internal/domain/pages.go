package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PageList is an ordered list of page numbers inside a standard's PDF.
//
// It always serialises as a JSON array. Decoding also accepts the legacy
// shapes found in older data: a single number, a numeric string, or null.
// Non-positive pages are dropped.
type PageList []int

func (p PageList) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(p))
}

func (p *PageList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("pages: %w", err)
	}

	var items []any
	switch val := v.(type) {
	case nil:
		*p = nil
		return nil
	case []any:
		items = val
	default:
		items = []any{val}
	}

	pages := make(PageList, 0, len(items))
	for _, item := range items {
		page, ok, err := parsePage(item)
		if err != nil {
			return err
		}
		if ok {
			pages = append(pages, page)
		}
	}
	*p = pages
	return nil
}

func parsePage(v any) (int, bool, error) {
	var n float64
	switch val := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("pages: invalid number %q", val)
		}
		n = f
	case float64:
		n = val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("pages: %q is not a page number", val)
		}
		n = f
	default:
		return 0, false, fmt.Errorf("pages: unsupported value of type %T", v)
	}

	if n != math.Trunc(n) {
		return 0, false, fmt.Errorf("pages: %v is not a whole page", n)
	}
	if n < 1 {
		return 0, false, nil
	}
	return int(n), true, nil
}

// PageFromLink reads a *_link value as a page number. Links that are real
// URLs (or empty) yield false.
func PageFromLink(link string) (int, bool) {
	page, ok, err := parsePage(link)
	if err != nil {
		return 0, false
	}
	return page, ok
}

// DeepLinks points at pages of each standard's document.
type DeepLinks struct {
	PMBOK    PageList `json:"PMBOK"`
	PRINCE2  PageList `json:"PRINCE2"`
	ISO21502 PageList `json:"ISO21502"`
}

// For returns the pages recorded for standard (see Standards).
func (d DeepLinks) For(standard string) PageList {
	switch standard {
	case StandardPMBOK:
		return d.PMBOK
	case StandardPRINCE2:
		return d.PRINCE2
	case StandardISO21502:
		return d.ISO21502
	default:
		return nil
	}
}
