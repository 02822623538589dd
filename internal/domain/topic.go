package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Standard names as they appear in topic fields, deep links and bookmarks.
const (
	StandardPMBOK    = "PMBOK"
	StandardPRINCE2  = "PRINCE2"
	StandardISO21502 = "ISO21502"
)

// Standards lists the compared standards in display order.
var Standards = []string{StandardPMBOK, StandardPRINCE2, StandardISO21502}

// Topic is a knowledge area compared across the three standards.
//
// Key is the identity: unique and never rewritten once created.
// JSON field names follow the reference data files.
type Topic struct {
	Key   string `json:"key"`
	Title string `json:"title"`

	PMBOK       Content `json:"PMBOK"`
	PMBOKLink   string  `json:"PMBOK_link"`
	PRINCE2     Content `json:"PRINCE2"`
	PRINCE2Link string  `json:"PRINCE2_link"`
	ISO21502    Content `json:"ISO21502"`
	ISOLink     string  `json:"ISO_link"`

	Similarities string    `json:"similarities"`
	Differences  Content   `json:"differences"`
	UniquePoints Content   `json:"uniquePoints"`
	DeepLinks    DeepLinks `json:"deepLinks"`

	// Timestamps are only set on stored topics.
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// ContentFor returns the topic's own text for standard.
func (t *Topic) ContentFor(standard string) Content {
	switch standard {
	case StandardPMBOK:
		return t.PMBOK
	case StandardPRINCE2:
		return t.PRINCE2
	case StandardISO21502:
		return t.ISO21502
	default:
		return Content{}
	}
}

// Restamp sets t's timestamps relative to the stored version prev:
// CreatedAt is inherited, UpdatedAt only moves when the content changed.
func (t *Topic) Restamp(prev *Topic, now time.Time) {
	if prev == nil {
		t.CreatedAt, t.UpdatedAt = now, now
		return
	}
	t.CreatedAt = prev.CreatedAt
	a, b := *t, *prev
	a.CreatedAt, a.UpdatedAt = time.Time{}, time.Time{}
	b.CreatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	if sameJSON(a, b) {
		t.UpdatedAt = prev.UpdatedAt
		return
	}
	t.UpdatedAt = now
}

// sameJSON compares two values by their canonical JSON encoding
// (map keys are sorted by encoding/json).
func sameJSON(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
